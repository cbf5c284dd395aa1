package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adobah666/edutrack-sub001/internal/middleware"
	"github.com/adobah666/edutrack-sub001/internal/models"
	"github.com/adobah666/edutrack-sub001/pkg/response"
)

type approvalService interface {
	GetForCaller(ctx context.Context, classID, rawTerm string, caller models.Caller) (models.TermApproval, error)
	ToggleApproval(ctx context.Context, req models.ToggleApprovalRequest, caller models.Caller) (*models.TermApproval, error)
}

// ApprovalHandler exposes the per class/term approval gate.
type ApprovalHandler struct {
	service approvalService
}

// NewApprovalHandler builds a new handler.
func NewApprovalHandler(service approvalService) *ApprovalHandler {
	return &ApprovalHandler{service: service}
}

// Get godoc
// @Summary Get approval state for a class and term
// @Tags Approvals
// @Produce json
// @Param id path string true "Class ID"
// @Param term path string true "Term"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/approvals/{term} [get]
func (h *ApprovalHandler) Get(c *gin.Context) {
	approval, err := h.service.GetForCaller(c.Request.Context(), c.Param("id"), c.Param("term"), middleware.CallerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, approval)
}

// Toggle godoc
// @Summary Approve or revoke results for a class and term
// @Tags Approvals
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param term path string true "Term"
// @Param payload body models.ToggleApprovalRequest true "Approval state"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /classes/{id}/approvals/{term} [put]
func (h *ApprovalHandler) Toggle(c *gin.Context) {
	var req models.ToggleApprovalRequest
	if !bindJSON(c, &req) {
		return
	}
	req.ClassID = c.Param("id")
	req.Term = c.Param("term")

	approval, err := h.service.ToggleApproval(c.Request.Context(), req, middleware.CallerFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, http.StatusOK, approval)
}
