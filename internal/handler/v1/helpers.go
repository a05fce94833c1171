package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agendoc/agendoc/internal/domain/appointment"
	"github.com/agendoc/agendoc/internal/domain/appointmenttype"
	"github.com/agendoc/agendoc/internal/domain/availability"
	"github.com/agendoc/agendoc/internal/domain/bookingtoken"
	"github.com/agendoc/agendoc/internal/domain/calendar"
	"github.com/agendoc/agendoc/internal/domain/samsevent"
	"github.com/agendoc/agendoc/internal/domain/specialty"
	"github.com/agendoc/agendoc/internal/schedule"
	"github.com/agendoc/agendoc/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type APIResponse[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse[any]{Data: data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, APIResponse[any]{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

func respondServiceError(c *gin.Context, err error) {
	var validErr *service.ValidationError
	if errors.As(err, &validErr) {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: validErr.Fields,
		})
		return
	}

	// A booking window violation is a field-level rejection of startAt, with
	// the bound that was hit in the message.
	var windowErr *schedule.WindowViolation
	if errors.As(err, &windowErr) {
		c.JSON(http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "validation failed",
			Fields: map[string][]string{"startAt": {windowErr.Error()}},
		})
		return
	}

	switch {
	case errors.Is(err, calendar.ErrCalendarNotFound),
		errors.Is(err, appointment.ErrAppointmentNotFound),
		errors.Is(err, appointmenttype.ErrTypeNotFound),
		errors.Is(err, availability.ErrRuleNotFound),
		errors.Is(err, availability.ErrExceptionNotFound),
		errors.Is(err, specialty.ErrSpecialtyNotFound),
		errors.Is(err, bookingtoken.ErrTokenNotFound),
		errors.Is(err, samsevent.ErrEventNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.Is(err, appointment.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			Code:  "SLOT_UNAVAILABLE",
		})

	case errors.Is(err, calendar.ErrDuplicateCalendar),
		errors.Is(err, specialty.ErrSpecialtyInUse):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})

	case errors.Is(err, appointment.ErrScheduledInPast),
		errors.Is(err, appointment.ErrAlreadyCancelled),
		errors.Is(err, appointmenttype.ErrInvalidDuration),
		errors.Is(err, availability.ErrInvalidDayOfWeek),
		errors.Is(err, availability.ErrInvalidClockTime),
		errors.Is(err, availability.ErrInvalidKind),
		errors.Is(err, calendar.ErrInvalidScope),
		errors.Is(err, calendar.ErrInvalidBookingWindow):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})

	case errors.Is(err, calendar.ErrCalendarMismatch),
		errors.Is(err, calendar.ErrSamsNotBookable),
		errors.Is(err, calendar.ErrCalendarInactive),
		errors.Is(err, appointmenttype.ErrTypeMismatch),
		errors.Is(err, appointmenttype.ErrTypeInactive):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})

	case errors.Is(err, bookingtoken.ErrTokenExpired),
		errors.Is(err, bookingtoken.ErrTokenUsed),
		errors.Is(err, bookingtoken.ErrTokenScope):
		c.JSON(http.StatusGone, ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "access denied"})

	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})

	case errors.Is(err, service.ErrAccountLocked):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{
			Error: "account temporarily locked",
			Code:  "ACCOUNT_LOCKED",
		})

	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request: " + err.Error()})
		return false
	}

	return true
}

func parseUUID(c *gin.Context, param string) (uuid.UUID, bool) {
	raw := c.Param(param)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + param + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func parseQueryUUID(c *gin.Context, key string) (uuid.UUID, bool) {
	raw := c.Query(key)
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + key + ": must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

// parseQueryUUIDList parses a comma-separated list of UUIDs; an absent
// parameter yields an empty list.
func parseQueryUUIDList(c *gin.Context, key string) ([]uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(strings.TrimSpace(p))
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + key + ": must be comma-separated UUIDs"})
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// parseQueryTime parses an RFC 3339 timestamp query parameter.
func parseQueryTime(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid " + key + ": must be an RFC 3339 timestamp"})
		return time.Time{}, false
	}
	return t.UTC(), true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return defaultVal
}
