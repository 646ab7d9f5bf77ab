package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planora/internal/core/role"
	"planora/internal/domain"
	"planora/internal/domain/user"
	"planora/internal/infrastructure/http/v1/dto"
)

// UserHandler serves tenant-scoped user management endpoints.
type UserHandler struct {
	*BaseHandler
	service *user.Service
}

// NewUserHandler creates a new user handler.
func NewUserHandler(base *BaseHandler, service *user.Service) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /users.
func (h *UserHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	if roleStr := c.Query("role"); roleStr != "" {
		r := role.Role(roleStr)
		filter.Role = &r
	}
	if isActive := c.Query("isActive"); isActive != "" {
		val := isActive == "true"
		filter.IsActive = &val
	}

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

	items := make([]*dto.UserResponse, len(result.Items))
	for i, u := range result.Items {
		items[i] = dto.FromUser(u)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	u, err := h.service.GetByID(ctx, userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromUser(u))
}

// Create handles POST /users.
func (h *UserHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	serviceReq, err := req.ToServiceRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	u, err := h.service.Create(ctx, serviceReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromUser(u))
}

// Update handles PUT /users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	u, err := h.service.Update(ctx, userID, req.ToServiceRequest())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(u))
}

// Delete handles DELETE /users/:id.
func (h *UserHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	userID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, userID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
