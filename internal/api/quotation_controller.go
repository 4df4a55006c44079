package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/auth"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/service"
	"github.com/thiagoraheem/Gestao-de-Compras-sub006/internal/utils"
)

// QuotationController handles the quotation lifecycle and supplier
// selection.
type QuotationController struct {
	quotationService      service.QuotationService
	reconciliationService service.ReconciliationService
	auditService          service.AuditLogService
}

// NewQuotationController creates a quotation controller.
func NewQuotationController(
	quotationService service.QuotationService,
	reconciliationService service.ReconciliationService,
	auditService service.AuditLogService,
) *QuotationController {
	return &QuotationController{
		quotationService:      quotationService,
		reconciliationService: reconciliationService,
		auditService:          auditService,
	}
}

// OpenQuotationInput opens a quotation round for a request.
type OpenQuotationInput struct {
	Deadline *time.Time `json:"deadline"`
}

// Open creates the quotation round for a request in the quoting phase.
func (c *QuotationController) Open(ctx *gin.Context) {
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
	if !actor.IsBuyer {
		Error(ctx, http.StatusForbidden, "buyer role required", "")
		return
	}

	var input OpenQuotationInput
	if err := ctx.ShouldBindJSON(&input); err != nil && ctx.Request.ContentLength > 0 {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	quotation, err := c.quotationService.Open(ctx.Request.Context(), id, input.Deadline, actor)
	if err != nil {
		WorkflowError(ctx, err)
		return
	}

	c.audit(ctx, actor, "quotation.open", quotation.ID, input)
	Success(ctx, quotation)
}

// Get returns a quotation with its lines and supplier responses.
func (c *QuotationController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid quotation ID", err.Error())
		return
	}

	view, err := c.quotationService.Get(ctx.Request.Context(), id)
	if err != nil {
		Error(ctx, http.StatusNotFound, "quotation not found", err.Error())
		return
	}

	Success(ctx, view)
}

// RegisterSupplier records one supplier's priced response.
func (c *QuotationController) RegisterSupplier(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid quotation ID", err.Error())
		return
	}

	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthenticated", "")
		return
	}
	if !actor.IsBuyer {
		Error(ctx, http.StatusForbidden, "buyer role required", "")
		return
	}

	var input service.SupplierQuotationInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	supplierQuotation, err := c.quotationService.RegisterSupplierQuotation(ctx.Request.Context(), id, &input, actor)
	if err != nil {
		WorkflowError(ctx, err)
		return
	}

	c.audit(ctx, actor, "quotation.register_supplier", id, input)
	Success(ctx, supplierQuotation)
}

// SelectionInput chooses the winning supplier response and flags lines
// the buyer decided not to fulfill in this round.
type SelectionInput struct {
	SupplierQuotationID string   `json:"supplier_quotation_id" binding:"required"`
	UnavailableItemIDs  []string `json:"unavailable_item_ids"`
}

// Select picks the winning supplier, builds the purchase order and
// derives a follow-up request for unfulfilled lines.
func (c *QuotationController) Select(ctx *gin.Context) {
	id := ctx.Param("id")
	if err := utils.ValidateID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid quotation ID", err.Error())
		return
	}

	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "unauthenticated", "")
		return
	}
	if !actor.IsBuyer {
		Error(ctx, http.StatusForbidden, "buyer role required", "")
		return
	}

	var input SelectionInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := c.reconciliationService.SelectSupplierQuotation(
		ctx.Request.Context(), id, input.SupplierQuotationID, input.UnavailableItemIDs, actor)
	if err != nil {
		WorkflowError(ctx, err)
		return
	}

	c.audit(ctx, actor, "quotation.select", id, input)
	Success(ctx, result)
}

func (c *QuotationController) audit(ctx *gin.Context, actor *auth.Actor, action string, resourceID string, details interface{}) {
	if c.auditService == nil {
		return
	}
	if err := c.auditService.RecordAction(ctx.Request.Context(), actor.ID, action, "quotation", resourceID, details); err != nil {
		GetLogger().WithError(err).Warn("failed to write audit log")
	}
}
