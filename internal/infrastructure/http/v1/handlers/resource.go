package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planora/internal/domain"
	"planora/internal/infrastructure/http/v1/dto"
)

// ResourceHandler provides generic HTTP handlers for tenant-scoped
// resources built on domain.TenantService. Tenant isolation happens in the
// service/repository layers; handlers only translate HTTP to domain calls.
type ResourceHandler[T domain.TenantEntity, CreateDTO any, UpdateDTO any] struct {
	*BaseHandler
	service    *domain.TenantService[T]
	entityName string

	// Mapper functions. MapCreateDTO and MapUpdateDTO may reject bad
	// payloads (unparseable ids, malformed amounts).
	mapCreateDTO func(req CreateDTO) (T, error)
	mapUpdateDTO func(req UpdateDTO, existing T) (T, error)
}

// ResourceHandlerConfig configures the resource handler.
type ResourceHandlerConfig[T domain.TenantEntity, CreateDTO any, UpdateDTO any] struct {
	Service      *domain.TenantService[T]
	EntityName   string
	MapCreateDTO func(req CreateDTO) (T, error)
	MapUpdateDTO func(req UpdateDTO, existing T) (T, error)
}

// NewResourceHandler creates a new resource handler.
func NewResourceHandler[T domain.TenantEntity, CreateDTO any, UpdateDTO any](
	base *BaseHandler,
	cfg ResourceHandlerConfig[T, CreateDTO, UpdateDTO],
) *ResourceHandler[T, CreateDTO, UpdateDTO] {
	return &ResourceHandler[T, CreateDTO, UpdateDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		entityName:   cfg.EntityName,
		mapCreateDTO: cfg.MapCreateDTO,
		mapUpdateDTO: cfg.MapUpdateDTO,
	}
}

// List handles GET /{resource} - list with filtering and pagination.
func (h *ResourceHandler[T, CreateDTO, UpdateDTO]) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-created_at")

	if isActive := c.Query("isActive"); isActive != "" {
		val := isActive == "true"
		filter.IsActive = &val
	}

	// Scope refinement: the service narrows, never widens.
	tenantID, ok := h.ParseTenantQuery(c)
	if !ok {
		return
	}
	filter.EntrepreneurID = tenantID

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /{resource}/:id - get single entity.
func (h *ResourceHandler[T, CreateDTO, UpdateDTO]) Get(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ent, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ent)
}

// Create handles POST /{resource} - create new entity.
func (h *ResourceHandler[T, CreateDTO, UpdateDTO]) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	ent, err := h.mapCreateDTO(req)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, ent); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, ent)
}

// Update handles PUT /{resource}/:id - update existing entity.
func (h *ResourceHandler[T, CreateDTO, UpdateDTO]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req UpdateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	updated, err := h.mapUpdateDTO(req, existing)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, updated); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// Delete handles DELETE /{resource}/:id.
func (h *ResourceHandler[T, CreateDTO, UpdateDTO]) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	entityID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, entityID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
