package handlers

import (
	"github.com/gin-gonic/gin"

	"planora/internal/domain/instance"
	"planora/internal/infrastructure/http/v1/dto"
)

// InstanceHandler serves messaging instance endpoints: generic CRUD plus
// the connection status transition.
type InstanceHandler struct {
	*ResourceHandler[*instance.Instance, dto.CreateInstanceRequest, dto.UpdateInstanceRequest]
	service *instance.Service
}

// NewInstanceHandler creates a new instance handler.
func NewInstanceHandler(base *BaseHandler, service *instance.Service) *InstanceHandler {
	cfg := ResourceHandlerConfig[
		*instance.Instance,
		dto.CreateInstanceRequest,
		dto.UpdateInstanceRequest,
	]{
		Service:    service.TenantService,
		EntityName: "instance",

		MapCreateDTO: func(req dto.CreateInstanceRequest) (*instance.Instance, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateInstanceRequest, existing *instance.Instance) (*instance.Instance, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
	}

	return &InstanceHandler{
		ResourceHandler: NewResourceHandler(base, cfg),
		service:         service,
	}
}

// SetStatus handles POST /whatsapp-instances/:id/status.
func (h *InstanceHandler) SetStatus(c *gin.Context) {
	ctx := c.Request.Context()

	instanceID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetInstanceStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.service.SetStatus(ctx, instanceID, instance.Status(req.Status))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}
