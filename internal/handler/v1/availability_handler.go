package v1

import (
	"net/http"

	"github.com/agendoc/agendoc/internal/domain"
	"github.com/agendoc/agendoc/internal/handler/middleware"
	"github.com/agendoc/agendoc/internal/schedule"
	"github.com/agendoc/agendoc/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	svc *service.AvailabilityService
}

func NewAvailabilityHandler(svc *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

type slotResponse struct {
	Slots         []schedule.Interval    `json:"slots"`
	BookingWindow schedule.BookingWindow `json:"bookingWindow"`
}

// Slots computes availability for one doctor/calendar/type over [from, to).
// Dashboard variant: sams calendars are reachable and the booking window is
// reported but not enforced on the range. Doctors only see their own
// availability; admins may query any doctor.
func (h *AvailabilityHandler) Slots(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	doctorID, ok := parseQueryUUID(c, "doctorId")
	if !ok {
		return
	}
	if claims.Role != domain.RoleAdmin {
		doctorID = claims.UserID
	}
	calendarID, ok := parseQueryUUID(c, "calendarId")
	if !ok {
		return
	}
	typeID, ok := parseQueryUUID(c, "appointmentTypeId")
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

	slots, window, err := h.svc.GetSlots(c.Request.Context(), doctorID, calendarID, typeID, from, to, false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if slots == nil {
		slots = []schedule.Interval{}
	}
	respondOK(c, slotResponse{Slots: slots, BookingWindow: window})
}

// Feed aggregates availability across several doctors and calendars into one
// deduplicated, ascending slot feed. Non-admin callers are pinned to their
// own doctor id regardless of the requested list.
func (h *AvailabilityHandler) Feed(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	doctorIDs, ok := parseQueryUUIDList(c, "doctorIds")
	if !ok {
		return
	}
	if claims.Role != domain.RoleAdmin {
		doctorIDs = []uuid.UUID{claims.UserID}
	}
	calendarIDs, ok := parseQueryUUIDList(c, "calendarIds")
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

	slots, err := h.svc.GetFeedSlots(c.Request.Context(), doctorIDs, calendarIDs, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"slots": slots})
}
