package handlers

import (
	"github.com/gin-gonic/gin"

	"planora/internal/core/apperror"
	"planora/internal/core/id"
	"planora/internal/domain/ticket"
	"planora/internal/infrastructure/http/v1/dto"
)

// TicketHandler serves support ticket endpoints: generic CRUD plus the
// assign and resolve workflow actions.
type TicketHandler struct {
	*ResourceHandler[*ticket.Ticket, dto.CreateTicketRequest, dto.UpdateTicketRequest]
	service *ticket.Service
}

// NewTicketHandler creates a new ticket handler.
func NewTicketHandler(base *BaseHandler, service *ticket.Service) *TicketHandler {
	cfg := ResourceHandlerConfig[
		*ticket.Ticket,
		dto.CreateTicketRequest,
		dto.UpdateTicketRequest,
	]{
		Service:    service.TenantService,
		EntityName: "ticket",

		MapCreateDTO: func(req dto.CreateTicketRequest) (*ticket.Ticket, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateTicketRequest, existing *ticket.Ticket) (*ticket.Ticket, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
	}

	return &TicketHandler{
		ResourceHandler: NewResourceHandler(base, cfg),
		service:         service,
	}
}

// Assign handles POST /tickets/:id/assign.
func (h *TicketHandler) Assign(c *gin.Context) {
	ctx := c.Request.Context()

	ticketID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AssignTicketRequest
	if !h.BindJSON(c, &req) {
		return
	}

	assigneeID, err := id.Parse(req.AssigneeID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid assigneeId").WithDetail("assigneeId", req.AssigneeID))
		return
	}

	updated, err := h.service.Assign(ctx, ticketID, assigneeID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}

// Resolve handles POST /tickets/:id/resolve.
func (h *TicketHandler) Resolve(c *gin.Context) {
	ctx := c.Request.Context()

	ticketID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	updated, err := h.service.Resolve(ctx, ticketID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, updated)
}
