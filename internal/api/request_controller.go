package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/auth"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/phase"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/repository"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/service"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/utils"
)

// RequestController handles purchase request endpoints.
type RequestController struct {
	requestService    service.RequestService
	transitionService service.TransitionService
	auditService      service.AuditLogService
}

// NewRequestController creates a purchase request controller.
func NewRequestController(
	requestService service.RequestService,
	transitionService service.TransitionService,
	auditService service.AuditLogService,
) *RequestController {
	return &RequestController{
		requestService:    requestService,
		transitionService: transitionService,
		auditService:      auditService,
	}
}

// validateRequestID rejects malformed IDs before they reach the service.
func (c *RequestController) validateRequestID(ctx *gin.Context, id string) bool {
	if err := utils.ValidateID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request ID", err.Error())
		return false
	}
	return true
}

// Create registers a new purchase request in the opening phase.
func (c *RequestController) Create(ctx *gin.Context) {
	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	var input service.CreateRequestInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	snapshot, err := c.requestService.Create(ctx.Request.Context(), &input, actor)
	if err != nil {
		WorkflowError(ctx, err)
		return
	}

	c.audit(ctx, actor, "request.create", snapshot.Request.ID, input)
	Success(ctx, snapshot)
}

// Get returns a request with its items, quotation, order and history.
func (c *RequestController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateRequestID(ctx, id) {
		return
	}

	snapshot, err := c.requestService.Get(ctx.Request.Context(), id)
	if err != nil {
		Error(ctx, http.StatusNotFound, "request not found", err.Error())
		return
	}

	Success(ctx, snapshot)
}

// List returns requests matching the query filters.
func (c *RequestController) List(ctx *gin.Context) {
	filter := &repository.RequestFilter{}

	if v := ctx.Query("phase"); v != "" {
		if _, err := phase.Parse(v); err != nil {
			Error(ctx, http.StatusBadRequest, "invalid phase", err.Error())
			return
		}
		filter.Phase = &v
	}
	if v := ctx.Query("requester_id"); v != "" {
		filter.RequesterID = &v
	}
	if v := ctx.Query("cost_center"); v != "" {
		filter.CostCenter = &v
	}
	if v := ctx.Query("urgency"); v != "" {
		filter.Urgency = &v
	}
	if v := ctx.Query("start_time"); v != "" {
		filter.StartTime = &v
	}
	if v := ctx.Query("end_time"); v != "" {
		filter.EndTime = &v
	}

	requests, err := c.requestService.List(ctx.Request.Context(), filter)
	if err != nil {
		Error(ctx, http.StatusInternalServerError, "failed to list requests", err.Error())
		return
	}

	Success(ctx, requests)
}

// TransitionInput names the phase a request should move to.
type TransitionInput struct {
	TargetPhase string `json:"target_phase" binding:"required"`
}

// Transition moves a request to another phase of the workflow.
func (c *RequestController) Transition(ctx *gin.Context) {
	id := ctx.Param("id")
	if !c.validateRequestID(ctx, id) {
		return
	}

	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthenticated", "")
		return
	}

	var input TransitionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	target, err := phase.Parse(input.TargetPhase)
	if err != nil {
		Error(ctx, http.StatusBadRequest, "invalid phase", err.Error())
		return
	}

	snapshot, err := c.transitionService.Transition(ctx.Request.Context(), id, target, actor)
	if err != nil {
		WorkflowError(ctx, err)
		return
	}

	c.audit(ctx, actor, "request.transition", id, input)
	Success(ctx, snapshot)
}

// audit records the action without failing the request on audit errors.
func (c *RequestController) audit(ctx *gin.Context, actor *auth.Actor, action string, resourceID string, details interface{}) {
	if c.auditService == nil {
		return
	}
	if err := c.auditService.RecordAction(ctx.Request.Context(), actor.ID, action, "purchase_request", resourceID, details); err != nil {
		GetLogger().WithError(err).Warn("failed to write audit log")
	}
}
