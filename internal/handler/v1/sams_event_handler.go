package v1

import (
	"net/http"
	"time"

	"github.com/agendoc/agendoc/internal/domain/samsevent"
	"github.com/agendoc/agendoc/internal/handler/middleware"
	"github.com/agendoc/agendoc/internal/service"
	"github.com/gin-gonic/gin"
)

type SamsEventHandler struct {
	svc *service.SamsEventService
}

func NewSamsEventHandler(svc *service.SamsEventService) *SamsEventHandler {
	return &SamsEventHandler{svc: svc}
}

type createSamsEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	StartAt     time.Time `json:"startAt" binding:"required"`
	EndAt       time.Time `json:"endAt" binding:"required"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
}

func (h *SamsEventHandler) Create(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createSamsEventRequest
	if !bindJSON(c, &req) {
		return
	}

	e, err := h.svc.Create(c.Request.Context(), &service.CreateSamsEventCommand{
		Title:       req.Title,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Location:    req.Location,
		Description: req.Description,
		Source:      req.Source,
	}, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, e)
}

func (h *SamsEventHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, e)
}

func (h *SamsEventHandler) List(c *gin.Context) {
	from, ok := parseQueryTime(c, "from")
	if !ok {
		return
	}
	to, ok := parseQueryTime(c, "to")
	if !ok {
		return
	}

	events, err := h.svc.ListInRange(c.Request.Context(), from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if events == nil {
		events = []*samsevent.SamsEvent{}
	}
	respondOK(c, gin.H{"events": events})
}

func (h *SamsEventHandler) Delete(c *gin.Context) {
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
	c.Status(http.StatusNoContent)
}
