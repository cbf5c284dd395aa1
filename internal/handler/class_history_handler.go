package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adobah666/edutrack-sub001/internal/middleware"
	"github.com/adobah666/edutrack-sub001/internal/models"
	"github.com/adobah666/edutrack-sub001/pkg/response"
)

type classHistoryService interface {
	GetClassHistory(ctx context.Context, studentID string, caller models.Caller) (*models.ClassHistoryView, error)
	RepairClassHistory(ctx context.Context, studentID string, caller models.Caller) (*models.ClassHistoryView, error)
}

// ClassHistoryHandler serves student placement ledgers.
type ClassHistoryHandler struct {
	service classHistoryService
}

// NewClassHistoryHandler builds a new handler.
func NewClassHistoryHandler(service classHistoryService) *ClassHistoryHandler {
	return &ClassHistoryHandler{service: service}
}

// Get godoc
// @Summary Student class history
// @Tags ClassHistory
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/class-history [get]
func (h *ClassHistoryHandler) Get(c *gin.Context) {
	view, err := h.service.GetClassHistory(c.Request.Context(), c.Param("id"), middleware.CallerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}

// Repair godoc
// @Summary Reconcile a student's class history with current placement
// @Tags ClassHistory
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/class-history/repair [post]
func (h *ClassHistoryHandler) Repair(c *gin.Context) {
	view, err := h.service.RepairClassHistory(c.Request.Context(), c.Param("id"), middleware.CallerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, view)
}
