package v1

import (
	"net/http"
	"time"

	"github.com/agendoc/agendoc/internal/domain/availability"
	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/agendoc/agendoc/internal/handler/middleware"
	"github.com/agendoc/agendoc/internal/service"
	"github.com/gin-gonic/gin"
)

type CalendarHandler struct {
	svc      *service.CalendarService
	schedules *service.AvailabilityAdminService
}

func NewCalendarHandler(svc *service.CalendarService, schedules *service.AvailabilityAdminService) *CalendarHandler {
	return &CalendarHandler{svc: svc, schedules: schedules}
}

// Mine lists the calendars owned by the authenticated doctor.
func (h *CalendarHandler) Mine(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	calendars, err := h.svc.ListMine(c.Request.Context(), claims.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, calendars)
}

type bookingWindowRequest struct {
	BookingMinHours int `json:"bookingMinHours"`
	BookingMaxDays  int `json:"bookingMaxDays" binding:"required"`
}

func (h *CalendarHandler) UpdateBookingWindow(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req bookingWindowRequest
	if !bindJSON(c, &req) {
		return
	}

	cal, err := h.svc.UpdateBookingWindow(c.Request.Context(), id, &calendar.UpdateBookingWindowCommand{
		BookingMinHours: req.BookingMinHours,
		BookingMaxDays:  req.BookingMaxDays,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, cal)
}

// Delete cascade-removes the calendar and everything referencing it.
func (h *CalendarHandler) Delete(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, claims.UserID, string(claims.Role), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Message: "calendar deleted"})
}

type createRuleRequest struct {
	DayOfWeek *int   `json:"dayOfWeek" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
}

func (h *CalendarHandler) CreateRule(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	calendarID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req createRuleRequest
	if !bindJSON(c, &req) {
		return
	}

	rule, err := h.schedules.CreateRule(c.Request.Context(), &service.CreateRuleCommand{
		CalendarID: calendarID,
		DayOfWeek:  *req.DayOfWeek,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, rule)
}

func (h *CalendarHandler) ListRules(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	calendarID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	rules, err := h.schedules.ListRules(c.Request.Context(), calendarID, claims.UserID, string(claims.Role))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, rules)
}

func (h *CalendarHandler) DeleteRule(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	calendarID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	ruleID, ok := parseUUID(c, "ruleId")
	if !ok {
		return
	}

	if err := h.schedules.DeleteRule(c.Request.Context(), calendarID, ruleID, claims.UserID, string(claims.Role), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Message: "rule deleted"})
}

type createExceptionRequest struct {
	Date      string `json:"date" binding:"required"` // "2006-01-02"
	Kind      string `json:"kind" binding:"required"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Reason    string `json:"reason"`
}

func (h *CalendarHandler) CreateException(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	calendarID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req createExceptionRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date: must be YYYY-MM-DD")
		return
	}

	exc, err := h.schedules.CreateException(c.Request.Context(), &service.CreateExceptionCommand{
		CalendarID: calendarID,
		Date:       date,
		Kind:       availability.ExceptionKind(req.Kind),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Reason:     req.Reason,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, exc)
}

func (h *CalendarHandler) ListExceptions(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	calendarID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	from, ok := parseQueryTime(c, "from")
	if !ok {
		return
	}
	to, ok := parseQueryTime(c, "to")
	if !ok {
		return
	}

	exceptions, err := h.schedules.ListExceptions(c.Request.Context(), calendarID, from, to, claims.UserID, string(claims.Role))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, exceptions)
}

func (h *CalendarHandler) DeleteException(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	calendarID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	exceptionID, ok := parseUUID(c, "exceptionId")
	if !ok {
		return
	}

	if err := h.schedules.DeleteException(c.Request.Context(), calendarID, exceptionID, claims.UserID, string(claims.Role), c.ClientIP()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse[any]{Message: "exception deleted"})
}
