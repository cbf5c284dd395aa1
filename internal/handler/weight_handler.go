package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adobah666/edutrack-sub001/internal/middleware"
	"github.com/adobah666/edutrack-sub001/internal/models"
	"github.com/adobah666/edutrack-sub001/pkg/response"
)

type termWeightService interface {
	SetTermWeight(ctx context.Context, req models.SetTermWeightRequest, caller models.Caller) (*models.TermWeightOverride, error)
	DeleteTermWeight(ctx context.Context, subjectID, rawTerm string, caller models.Caller) error
}

// WeightHandler manages per-term weight overrides.
type WeightHandler struct {
	service termWeightService
}

// NewWeightHandler builds a new handler.
func NewWeightHandler(service termWeightService) *WeightHandler {
	return &WeightHandler{service: service}
}

// Set godoc
// @Summary Set term weights for a subject
// @Tags Weights
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param term path string true "Term"
// @Param payload body models.SetTermWeightRequest true "Weights"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /subjects/{id}/term-weights/{term} [put]
func (h *WeightHandler) Set(c *gin.Context) {
	var req models.SetTermWeightRequest
	if !bindJSON(c, &req) {
		return
	}
	req.SubjectID = c.Param("id")
	req.Term = c.Param("term")

	override, err := h.service.SetTermWeight(c.Request.Context(), req, middleware.CallerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, override)
}

// Delete godoc
// @Summary Remove a subject's term weight override
// @Tags Weights
// @Param id path string true "Subject ID"
// @Param term path string true "Term"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id}/term-weights/{term} [delete]
func (h *WeightHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteTermWeight(c.Request.Context(), c.Param("id"), c.Param("term"), middleware.CallerFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
