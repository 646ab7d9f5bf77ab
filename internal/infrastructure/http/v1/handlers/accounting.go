package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"planora/internal/core/apperror"
	"planora/internal/domain/accounting"
	"planora/internal/infrastructure/http/v1/dto"
)

// AccountingHandler serves income/expense entry endpoints plus the period
// summary aggregate.
type AccountingHandler struct {
	*ResourceHandler[*accounting.Entry, dto.CreateEntryRequest, dto.UpdateEntryRequest]
	service *accounting.Service
}

// NewAccountingHandler creates a new accounting handler.
func NewAccountingHandler(base *BaseHandler, service *accounting.Service) *AccountingHandler {
	cfg := ResourceHandlerConfig[
		*accounting.Entry,
		dto.CreateEntryRequest,
		dto.UpdateEntryRequest,
	]{
		Service:    service.TenantService,
		EntityName: "accounting entry",

		MapCreateDTO: func(req dto.CreateEntryRequest) (*accounting.Entry, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateEntryRequest, existing *accounting.Entry) (*accounting.Entry, error) {
			if err := req.ApplyTo(existing); err != nil {
				return nil, err
			}
			return existing, nil
		},
	}

	return &AccountingHandler{
		ResourceHandler: NewResourceHandler(base, cfg),
		service:         service,
	}
}

// Summary handles GET /accounting/summary?from=...&to=...
func (h *AccountingHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()

	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid from date, RFC3339 expected").WithDetail("from", c.Query("from")))
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid to date, RFC3339 expected").WithDetail("to", c.Query("to")))
		return
	}

	summary, err := h.service.Summarize(ctx, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(200, dto.FromSummary(summary, from, to))
}
