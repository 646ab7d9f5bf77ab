package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planora/internal/domain/pricetable"
	"planora/internal/infrastructure/http/v1/dto"
)

// PriceTableHandler serves price table endpoints. The public read surface
// and the super-admin management surface share this handler; route wiring
// decides which methods are exposed where.
type PriceTableHandler struct {
	*BaseHandler
	service *pricetable.Service
}

// NewPriceTableHandler creates a new price table handler.
func NewPriceTableHandler(base *BaseHandler, service *pricetable.Service) *PriceTableHandler {
	return &PriceTableHandler{
		BaseHandler: base,
		service:     service,
	}
}

// ListPublic handles GET /price-tables (no auth). Inactive tables are
// invisible here.
func (h *PriceTableHandler) ListPublic(c *gin.Context) {
	ctx := c.Request.Context()

	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	tables, err := h.service.ListPublic(ctx, limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": tables})
}

// GetPublic handles GET /price-tables/:id (no auth).
func (h *PriceTableHandler) GetPublic(c *gin.Context) {
	ctx := c.Request.Context()

	tableID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	table, err := h.service.GetPublic(ctx, tableID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, table)
}

// ListAll handles GET /admin/price-tables, inactive tables included.
func (h *PriceTableHandler) ListAll(c *gin.Context) {
	ctx := c.Request.Context()

	limit := h.ParseIntQuery(c, "limit", 50)
	offset := h.ParseIntQuery(c, "offset", 0)

	tables, err := h.service.ListAll(ctx, limit, offset)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": tables})
}

// Get handles GET /admin/price-tables/:id.
func (h *PriceTableHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	tableID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	table, err := h.service.Get(ctx, tableID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, table)
}

// Create handles POST /price-tables.
func (h *PriceTableHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreatePriceTableRequest
	if !h.BindJSON(c, &req) {
		return
	}

	table := req.ToEntity()
	if err := h.service.Create(ctx, table); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, table)
}

// Update handles PUT /price-tables/:id.
func (h *PriceTableHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	tableID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePriceTableRequest
	if !h.BindJSON(c, &req) {
		return
	}

	table, err := h.service.Get(ctx, tableID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(table)
	if err := h.service.Update(ctx, table); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, table)
}

// Delete handles DELETE /price-tables/:id. Refused while active
// plans still reference the table.
func (h *PriceTableHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	tableID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, tableID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
