package v1

import (
	"net/http"

	"github.com/agendoc/agendoc/internal/handler/middleware"
	"github.com/agendoc/agendoc/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingTokenHandler struct {
	svc *service.BookingTokenService
}

func NewBookingTokenHandler(svc *service.BookingTokenService) *BookingTokenHandler {
	return &BookingTokenHandler{svc: svc}
}

type issueTokenRequest struct {
	DoctorID      *uuid.UUID `json:"doctorId"`
	CalendarID    *uuid.UUID `json:"calendarId"`
	SpecialtyID   *uuid.UUID `json:"specialtyId"`
	CalendarScope string     `json:"calendarScope"`
}

// Issue creates a single-use booking link token. Doctors issue for themselves;
// admins may issue on behalf of any doctor.
func (h *BookingTokenHandler) Issue(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req issueTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	doctorID := claims.UserID
	if req.DoctorID != nil {
		if string(claims.Role) == "doctor" && *req.DoctorID != claims.UserID {
			respondServiceError(c, service.ErrForbidden)
			return
		}
		doctorID = *req.DoctorID
	}

	t, raw, err := h.svc.Issue(c.Request.Context(), doctorID, req.CalendarID, req.SpecialtyID, req.CalendarScope)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, gin.H{
		"token":     raw,
		"expiresAt": t.ExpiresAt,
	})
}
