package service

import (
	"github.com/deppfellow/listings-api/internal/repository"
	"github.com/deppfellow/listings-api/internal/server"
)

// Services groups the business-logic layer handed to the handlers.
type Services struct {
	Listings *ListingService
}

func NewServices(s *server.Server, repos *repository.Repositories) *Services {
	return &Services{
		Listings: NewListingService(repos.Listings, s.Cache),
	}
}
