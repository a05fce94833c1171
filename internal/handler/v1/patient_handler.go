package v1

import (
	"time"

	"github.com/agendoc/agendoc/internal/domain/appointment"
	"github.com/agendoc/agendoc/internal/domain/bookingtoken"
	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/agendoc/agendoc/internal/schedule"
	"github.com/agendoc/agendoc/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PatientHandler serves the public booking flow. Every route is gated on a
// single-use booking token; no account is involved.
type PatientHandler struct {
	tokens       *service.BookingTokenService
	availability *service.AvailabilityService
	appointments *service.AppointmentService
	calendars    *service.CalendarService
	log          *zap.Logger
}

func NewPatientHandler(
	tokens *service.BookingTokenService,
	availability *service.AvailabilityService,
	appointments *service.AppointmentService,
	calendars *service.CalendarService,
	log *zap.Logger,
) *PatientHandler {
	return &PatientHandler{
		tokens:       tokens,
		availability: availability,
		appointments: appointments,
		calendars:    calendars,
		log:          log,
	}
}

// Session validates a booking token and returns the calendars it opens,
// each with its current booking window.
func (h *PatientHandler) Session(c *gin.Context) {
	token, ok := h.resolveToken(c)
	if !ok {
		return
	}

	calendars, err := h.calendars.ListMine(c.Request.Context(), token.DoctorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	type sessionCalendar struct {
		*calendar.Calendar
		BookingWindow schedule.BookingWindow `json:"bookingWindow"`
	}
	out := make([]sessionCalendar, 0, len(calendars))
	for _, cal := range calendars {
		if !cal.Bookable() || !tokenCovers(token, cal) {
			continue
		}
		out = append(out, sessionCalendar{
			Calendar:      cal,
			BookingWindow: h.availability.ComputeBookingWindow(cal),
		})
	}

	respondOK(c, gin.H{
		"doctorId":  token.DoctorID,
		"expiresAt": token.ExpiresAt,
		"calendars": out,
	})
}

// Slots returns patient-bookable slots; the booking window both filters the
// slots and is echoed for UI messaging.
func (h *PatientHandler) Slots(c *gin.Context) {
	token, ok := h.resolveToken(c)
	if !ok {
		return
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

	if err := h.checkScope(c, token, calendarID); err != nil {
		respondServiceError(c, err)
		return
	}

	slots, window, err := h.availability.GetSlots(c.Request.Context(), token.DoctorID, calendarID, typeID, from, to, true)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if slots == nil {
		slots = []schedule.Interval{}
	}
	respondOK(c, slotResponse{Slots: slots, BookingWindow: window})
}

type patientBookRequest struct {
	CalendarID        uuid.UUID      `json:"calendarId" binding:"required"`
	AppointmentTypeID uuid.UUID      `json:"appointmentTypeId" binding:"required"`
	StartAt           time.Time      `json:"startAt" binding:"required"`
	Patient           patientPayload `json:"patient" binding:"required"`
}

// Book commits a patient booking and consumes the token. A lost race on the
// slot leaves the token valid so the patient can pick another slot.
func (h *PatientHandler) Book(c *gin.Context) {
	token, ok := h.resolveToken(c)
	if !ok {
		return
	}

	var req patientBookRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.checkScope(c, token, req.CalendarID); err != nil {
		respondServiceError(c, err)
		return
	}

	cmd := &appointment.CreateCommand{
		CalendarID:        req.CalendarID,
		DoctorID:          token.DoctorID,
		AppointmentTypeID: req.AppointmentTypeID,
		SpecialtyID:       token.SpecialtyID,
		StartAt:           req.StartAt,
		Patient: appointment.PatientInfo{
			LastName:  req.Patient.LastName,
			FirstName: req.Patient.FirstName,
			Phone:     req.Patient.Phone,
			Email:     req.Patient.Email,
		},
	}

	a, err := h.appointments.Book(c.Request.Context(), cmd, true, "patient", c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// The booking stands even when marking the token used fails, but an
	// unconsumed token stays replayable, so the failure must be visible.
	if err := h.tokens.Consume(c.Request.Context(), token); err != nil {
		h.log.Error("failed to consume booking token after booking",
			zap.String("token_id", token.ID.String()),
			zap.String("appointment_id", a.ID.String()),
			zap.Error(err),
		)
	}

	respondCreated(c, a)
}

func (h *PatientHandler) resolveToken(c *gin.Context) (*bookingtoken.BookingToken, bool) {
	token, err := h.tokens.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return token, true
}

// tokenCovers reports whether an already-loaded calendar falls inside the
// token's pin and scope restrictions.
func tokenCovers(token *bookingtoken.BookingToken, cal *calendar.Calendar) bool {
	if token.CalendarID != nil && *token.CalendarID != cal.ID {
		return false
	}
	if token.CalendarScope != "" && string(cal.Scope) != token.CalendarScope {
		return false
	}
	return true
}

// checkScope verifies the token covers the requested calendar.
func (h *PatientHandler) checkScope(c *gin.Context, token *bookingtoken.BookingToken, calendarID uuid.UUID) error {
	if token.CalendarID != nil && *token.CalendarID != calendarID {
		return bookingtoken.ErrTokenScope
	}
	if token.CalendarScope == "" {
		return nil
	}

	cal, err := h.calendars.Get(c.Request.Context(), calendarID)
	if err != nil {
		return err
	}
	if string(cal.Scope) != token.CalendarScope {
		return bookingtoken.ErrTokenScope
	}
	return nil
}
