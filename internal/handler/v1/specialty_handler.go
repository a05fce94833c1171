package v1

import (
	"net/http"

	"github.com/agendoc/agendoc/internal/domain/specialty"
	"github.com/agendoc/agendoc/internal/handler/middleware"
	"github.com/agendoc/agendoc/internal/service"
	"github.com/gin-gonic/gin"
)

type SpecialtyHandler struct {
	svc *service.SpecialtyService
}

func NewSpecialtyHandler(svc *service.SpecialtyService) *SpecialtyHandler {
	return &SpecialtyHandler{svc: svc}
}

type createSpecialtyRequest struct {
	Label string `json:"label" binding:"required"`
}

func (h *SpecialtyHandler) Create(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createSpecialtyRequest
	if !bindJSON(c, &req) {
		return
	}

	sp, err := h.svc.Create(c.Request.Context(), req.Label, claims.UserID, string(claims.Role), c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, sp)
}

func (h *SpecialtyHandler) List(c *gin.Context) {
	specialties, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if specialties == nil {
		specialties = []*specialty.Specialty{}
	}
	respondOK(c, gin.H{"specialties": specialties})
}

func (h *SpecialtyHandler) Delete(c *gin.Context) {
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
