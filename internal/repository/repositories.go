package repository

import (
	"github.com/deppfellow/listings-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Listings *ListingRepository
}

// NewRepositories binds every repository to the shared store handle owned
// by the server.
func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Listings: NewListingRepository(s.DB.Listings),
	}
}
