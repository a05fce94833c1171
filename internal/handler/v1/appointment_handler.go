package v1

import (
	"net/http"
	"time"

	"github.com/agendoc/agendoc/internal/domain/appointment"
	"github.com/agendoc/agendoc/internal/handler/middleware"
	"github.com/agendoc/agendoc/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	svc *service.AppointmentService
}

func NewAppointmentHandler(svc *service.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

type patientPayload struct {
	LastName  string `json:"lastname" binding:"required"`
	FirstName string `json:"firstname" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	Email     string `json:"email"`
}

type createAppointmentRequest struct {
	CalendarID        uuid.UUID      `json:"calendarId" binding:"required"`
	DoctorID          uuid.UUID      `json:"doctorId" binding:"required"`
	AppointmentTypeID uuid.UUID      `json:"appointmentTypeId" binding:"required"`
	SpecialtyID       *uuid.UUID     `json:"specialtyId"`
	StartAt           time.Time      `json:"startAt" binding:"required"`
	Patient           patientPayload `json:"patient" binding:"required"`
}

// Create books an appointment from the dashboard. Staff bookings are exempt
// from the calendar's booking window but still race through the atomic
// overlap check.
func (h *AppointmentHandler) Create(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	callerID := claims.UserID
	cmd := &appointment.CreateCommand{
		CalendarID:        req.CalendarID,
		DoctorID:          req.DoctorID,
		AppointmentTypeID: req.AppointmentTypeID,
		SpecialtyID:       req.SpecialtyID,
		StartAt:           req.StartAt,
		Patient: appointment.PatientInfo{
			LastName:  req.Patient.LastName,
			FirstName: req.Patient.FirstName,
			Phone:     req.Patient.Phone,
			Email:     req.Patient.Email,
		},
		CreatedBy: &callerID,
	}

	a, err := h.svc.Book(c.Request.Context(), cmd, false, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, a)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	q := &appointment.ListQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "pageSize", 20),
	}
	if raw := c.Query("doctorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid doctorId")
			return
		}
		q.DoctorID = &id
	}
	if raw := c.Query("calendarId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid calendarId")
			return
		}
		q.CalendarID = &id
	}
	if raw := c.Query("status"); raw != "" {
		st := appointment.Status(raw)
		q.Status = &st
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid from: must be an RFC 3339 timestamp")
			return
		}
		q.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid to: must be an RFC 3339 timestamp")
			return
		}
		q.To = &t
	}

	page, err := h.svc.List(c.Request.Context(), q, claims.UserID, string(claims.Role))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, page)
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req cancelRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.Cancel(c.Request.Context(), id, req.Reason, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}

type transferRequest struct {
	ToDoctorID   uuid.UUID `json:"toDoctorId" binding:"required"`
	ToCalendarID uuid.UUID `json:"toCalendarId" binding:"required"`
	Reason       string    `json:"reason"`
}

func (h *AppointmentHandler) Transfer(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req transferRequest
	if !bindJSON(c, &req) {
		return
	}

	a, err := h.svc.Transfer(c.Request.Context(), id, &appointment.TransferCommand{
		ToDoctorID:   req.ToDoctorID,
		ToCalendarID: req.ToCalendarID,
		Reason:       req.Reason,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, a)
}
