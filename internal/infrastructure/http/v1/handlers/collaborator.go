package handlers

import (
	"planora/internal/domain/collaborator"
	"planora/internal/infrastructure/http/v1/dto"
)

// CollaboratorHTTPHandler serves collaborator profile endpoints.
type CollaboratorHTTPHandler = ResourceHandler[
	*collaborator.Collaborator,
	dto.CreateCollaboratorRequest,
	dto.UpdateCollaboratorRequest,
]

// NewCollaboratorHandler wires the generic resource handler to the
// collaborator service and its DTO mapping.
func NewCollaboratorHandler(base *BaseHandler, service *collaborator.Service) *CollaboratorHTTPHandler {
	cfg := ResourceHandlerConfig[
		*collaborator.Collaborator,
		dto.CreateCollaboratorRequest,
		dto.UpdateCollaboratorRequest,
	]{
		Service:    service.TenantService,
		EntityName: "collaborator",

		MapCreateDTO: func(req dto.CreateCollaboratorRequest) (*collaborator.Collaborator, error) {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateCollaboratorRequest, existing *collaborator.Collaborator) (*collaborator.Collaborator, error) {
			req.ApplyTo(existing)
			return existing, nil
		},
	}

	return NewResourceHandler(base, cfg)
}
