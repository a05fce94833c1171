package v1

import (
	"net/http"

	"github.com/agendoc/agendoc/internal/domain/appointmenttype"
	"github.com/agendoc/agendoc/internal/handler/middleware"
	"github.com/agendoc/agendoc/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AppointmentTypeHandler struct {
	svc *service.AppointmentTypeService
}

func NewAppointmentTypeHandler(svc *service.AppointmentTypeService) *AppointmentTypeHandler {
	return &AppointmentTypeHandler{svc: svc}
}

type createTypeRequest struct {
	DoctorID            uuid.UUID  `json:"doctorId" binding:"required"`
	CalendarID          uuid.UUID  `json:"calendarId" binding:"required"`
	SpecialtyID         *uuid.UUID `json:"specialtyId"`
	Label               string     `json:"label" binding:"required"`
	DurationMinutes     int        `json:"durationMinutes" binding:"required"`
	BufferBeforeMinutes int        `json:"bufferBeforeMinutes"`
	BufferAfterMinutes  int        `json:"bufferAfterMinutes"`
	IsActive            *bool      `json:"isActive"`
}

func (h *AppointmentTypeHandler) Create(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	t, err := h.svc.Create(c.Request.Context(), &appointmenttype.CreateCommand{
		DoctorID:            req.DoctorID,
		CalendarID:          req.CalendarID,
		SpecialtyID:         req.SpecialtyID,
		Label:               req.Label,
		DurationMinutes:     req.DurationMinutes,
		BufferBeforeMinutes: req.BufferBeforeMinutes,
		BufferAfterMinutes:  req.BufferAfterMinutes,
		IsActive:            active,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, t)
}

type updateTypeRequest struct {
	Label               *string `json:"label"`
	DurationMinutes     *int    `json:"durationMinutes"`
	BufferBeforeMinutes *int    `json:"bufferBeforeMinutes"`
	BufferAfterMinutes  *int    `json:"bufferAfterMinutes"`
	IsActive            *bool   `json:"isActive"`
}

func (h *AppointmentTypeHandler) Update(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req updateTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	t, err := h.svc.Update(c.Request.Context(), id, &appointmenttype.UpdateCommand{
		Label:               req.Label,
		DurationMinutes:     req.DurationMinutes,
		BufferBeforeMinutes: req.BufferBeforeMinutes,
		BufferAfterMinutes:  req.BufferAfterMinutes,
		IsActive:            req.IsActive,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, t)
}

func (h *AppointmentTypeHandler) Delete(c *gin.Context) {
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
	c.JSON(http.StatusOK, APIResponse[any]{Message: "appointment type deleted"})
}

// ListByCalendar lists a calendar's active appointment types.
func (h *AppointmentTypeHandler) ListByCalendar(c *gin.Context) {
	calendarID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	types, err := h.svc.ListActive(c.Request.Context(), calendarID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, types)
}
