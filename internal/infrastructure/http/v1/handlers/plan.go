package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"planora/internal/core/apperror"
	"planora/internal/domain/plan"
	"planora/internal/infrastructure/http/v1/dto"
)

// PlanHandler serves customer plan endpoints. The visibility boundary is
// enforced by the service layer from the caller's identity.
type PlanHandler struct {
	*BaseHandler
	service *plan.Service
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(base *BaseHandler, service *plan.Service) *PlanHandler {
	return &PlanHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /customer-plans.
func (h *PlanHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req plan.CreateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(ctx, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, p)
}

// Get handles GET /customer-plans/:id.
func (h *PlanHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	planID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.GetByID(ctx, planID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// List handles GET /customer-plans with payStatus/isActive filters.
func (h *PlanHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := plan.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if v := c.Query("payStatus"); v != "" {
		status := plan.PayStatus(v)
		if !status.Valid() {
			h.Error(c, apperror.NewValidation("unknown payStatus").WithDetail("payStatus", v))
			return
		}
		filter.PayStatus = &status
	}
	if v := c.Query("isActive"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid isActive value"))
			return
		}
		filter.IsActive = &active
	}

	plans, total, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      plans,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Update handles PUT /customer-plans/:id. Payment status is never changed here.
func (h *PlanHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	planID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req plan.UpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(ctx, planID, req)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// MarkPaid handles POST /customer-plans/:id/pay.
func (h *PlanHandler) MarkPaid(c *gin.Context) {
	ctx := c.Request.Context()

	planID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.MarkPaidRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payDate := time.Now().UTC()
	if req.PayDate != nil {
		payDate = *req.PayDate
	}

	p, err := h.service.MarkPaid(ctx, planID, payDate, req.PayHash)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// MarkFailed handles POST /customer-plans/:id/fail.
func (h *PlanHandler) MarkFailed(c *gin.Context) {
	ctx := c.Request.Context()

	planID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.MarkFailed(ctx, planID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// CorrectStatus handles POST /customer-plans/:id/correct-status, admin only.
func (h *PlanHandler) CorrectStatus(c *gin.Context) {
	ctx := c.Request.Context()

	planID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CorrectStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	status := plan.PayStatus(req.Status)
	if !status.Valid() {
		h.Error(c, apperror.NewValidation("unknown status").WithDetail("status", req.Status))
		return
	}

	p, err := h.service.CorrectStatus(ctx, planID, status, req.PayDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}

// Retire handles DELETE /customer-plans/:id. The row survives for audit purposes.
func (h *PlanHandler) Retire(c *gin.Context) {
	ctx := c.Request.Context()

	planID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Retire(ctx, planID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Purge handles DELETE /customer-plans/:id/purge, admin only. Removes the row.
func (h *PlanHandler) Purge(c *gin.Context) {
	ctx := c.Request.Context()

	planID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Purge(ctx, planID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// GatewayCallback handles POST /customer-plans/gateway-callback. The payment
// provider authenticates by pay hash, not by bearer token.
func (h *PlanHandler) GatewayCallback(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GatewayCallbackRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payDate := time.Now().UTC()
	if req.PayDate != nil {
		payDate = *req.PayDate
	}

	p, err := h.service.HandleGatewayCallback(ctx, req.PayHash, req.Succeeded, payDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, p)
}
