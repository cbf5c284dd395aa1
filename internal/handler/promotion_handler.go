package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adobah666/edutrack-sub001/internal/middleware"
	"github.com/adobah666/edutrack-sub001/internal/models"
	"github.com/adobah666/edutrack-sub001/pkg/response"
)

type promotionService interface {
	PromoteStudents(ctx context.Context, req models.PromoteStudentsRequest, caller models.Caller) (*models.PromotionResult, error)
}

// PromotionHandler moves cohorts between classes.
type PromotionHandler struct {
	service promotionService
}

// NewPromotionHandler builds a new handler.
func NewPromotionHandler(service promotionService) *PromotionHandler {
	return &PromotionHandler{service: service}
}

// Promote godoc
// @Summary Promote students to another class
// @Description Records new class history entries and moves placement atomically. When the ledger write fails and fallback is enabled, only placement moves and fallback=true is returned.
// @Tags Promotions
// @Accept json
// @Produce json
// @Param payload body models.PromoteStudentsRequest true "Promotion"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /promotions [post]
func (h *PromotionHandler) Promote(c *gin.Context) {
	var req models.PromoteStudentsRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.service.PromoteStudents(c.Request.Context(), req, middleware.CallerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "fallback", result.Fallback)
	respond(c, http.StatusCreated, result)
}
