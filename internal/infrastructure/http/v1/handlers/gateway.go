package handlers

import (
	"planora/internal/domain/gateway"
	"planora/internal/infrastructure/http/v1/dto"
)

// GatewayHTTPHandler serves payment gateway configuration endpoints.
type GatewayHTTPHandler = ResourceHandler[
	*gateway.Gateway,
	dto.CreateGatewayRequest,
	dto.UpdateGatewayRequest,
]

// NewGatewayHandler wires the generic resource handler to the gateway
// service and its DTO mapping.
func NewGatewayHandler(base *BaseHandler, service *gateway.Service) *GatewayHTTPHandler {
	cfg := ResourceHandlerConfig[
		*gateway.Gateway,
		dto.CreateGatewayRequest,
		dto.UpdateGatewayRequest,
	]{
		Service:    service.TenantService,
		EntityName: "gateway",

		MapCreateDTO: func(req dto.CreateGatewayRequest) (*gateway.Gateway, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateGatewayRequest, existing *gateway.Gateway) (*gateway.Gateway, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
	}

	return NewResourceHandler(base, cfg)
}
