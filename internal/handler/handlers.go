package handler

import (
	"github.com/deppfellow/listings-api/internal/server"
	"github.com/deppfellow/listings-api/internal/service"
)

// Handlers is a container that groups all HTTP handlers.
type Handlers struct {
	System   *SystemHandler
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
	Listings *ListingHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		System:   NewSystemHandler(s),
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Listings: NewListingHandler(s, services.Listings),
	}
}
