package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/approval"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/auth"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/service"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/utils"
)

// ApprovalController handles approval decisions at the two gates.
type ApprovalController struct {
	approvalService service.ApprovalService
	auditService    service.AuditLogService
}

// NewApprovalController creates an approval controller.
func NewApprovalController(approvalService service.ApprovalService, auditService service.AuditLogService) *ApprovalController {
	return &ApprovalController{
		approvalService: approvalService,
		auditService:    auditService,
	}
}

// ApprovalInput carries one approval decision.
type ApprovalInput struct {
	Gate     string `json:"gate" binding:"required"`
	Approved *bool  `json:"approved" binding:"required"`
	Reason   string `json:"reason"`
}

// Submit records an approval or rejection for a request.
func (c *ApprovalController) Submit(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request ID", err.Error())
		return
	}

	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	var input ApprovalInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	gate, err := approval.ParseGate(input.Gate)
	if err != nil {
		Error(ctx, http.StatusBadRequest, "invalid approval gate", err.Error())
		return
	}

	if !c.allowed(actor, gate) {
		Error(ctx, http.StatusForbidden, "not an approver for this gate", "")
		return
	}

	snapshot, err := c.approvalService.SubmitApproval(
		ctx.Request.Context(), id, actor.ID, gate, *input.Approved, input.Reason)
	if err != nil {
		WorkflowError(ctx, err)
		return
	}

	if c.auditService != nil {
		if err := c.auditService.RecordAction(ctx.Request.Context(), actor.ID, "approval.submit", "purchase_request", id, input); err != nil {
			GetLogger().WithError(err).Warn("failed to write audit log")
		}
	}

	Success(ctx, snapshot)
}

// allowed checks the actor's role claim against the gate.
func (c *ApprovalController) allowed(actor *auth.Actor, gate approval.Gate) bool {
	switch gate {
	case approval.GateA1:
		return actor.IsApproverA1
	case approval.GateA2:
		return actor.IsApproverA2
	default:
		return false
	}
}
