package service

import (
	"context"
	"sync/atomic"

	"github.com/deppfellow/listings-api/internal/lib/cache"
	"github.com/deppfellow/listings-api/internal/model"
	"github.com/deppfellow/listings-api/internal/repository"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ListingStore is the repository contract the service depends on.
type ListingStore interface {
	AddNewListing(ctx context.Context, fields model.Fields) (model.Listing, error)
	GetAllListings(ctx context.Context, page, perPage int, name string) ([]model.Listing, error)
	GetListingByID(ctx context.Context, id string) (model.Listing, error)
	UpdateListingByID(ctx context.Context, fields model.Fields, id string) (int64, error)
	DeleteListingByID(ctx context.Context, id string) (int64, error)
}

// ErrListingNotFound is re-exported so handlers need not import the
// repository.
var ErrListingNotFound = repository.ErrListingNotFound

// ListingService runs listing use-cases. Reads by id go through the cache;
// writes that change or remove a listing evict it.
type ListingService struct {
	store ListingStore
	cache cache.Cache

	// writes counts successful updates and deletes. Get drops its own cache
	// fill when the count moved during the store read, since the value it
	// read may predate an eviction it raced with.
	writes atomic.Uint64
}

func NewListingService(store ListingStore, c cache.Cache) *ListingService {
	if c == nil {
		c = cache.Noop{}
	}
	return &ListingService{store: store, cache: c}
}

func cacheKey(id string) string {
	return "listing:" + id
}

// Create stores a new listing.
func (s *ListingService) Create(ctx context.Context, fields model.Fields) (model.Listing, error) {
	listing, err := s.store.AddNewListing(ctx, fields)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return listing, nil
}

// List returns one page of listings, optionally filtered by name.
func (s *ListingService) List(ctx context.Context, page, perPage int, name string) ([]model.Listing, error) {
	listings, err := s.store.GetAllListings(ctx, page, perPage, name)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return listings, nil
}

// Get returns the listing or ErrListingNotFound.
func (s *ListingService) Get(ctx context.Context, id string) (model.Listing, error) {
	logger := zerolog.Ctx(ctx)

	var cached model.Listing
	err := s.cache.Get(ctx, cacheKey(id), &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.Warn().Err(err).Str("listing_id", id).Msg("listing cache read failed")
	}

	gen := s.writes.Load()
	listing, err := s.store.GetListingByID(ctx, id)
	if errors.Is(err, ErrListingNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := s.cache.Set(ctx, cacheKey(id), listing); err != nil {
		logger.Warn().Err(err).Str("listing_id", id).Msg("listing cache write failed")
	}
	if s.writes.Load() != gen {
		s.evict(ctx, id)
	}

	return listing, nil
}

// Update overwrites the given fields and reports whether anything changed.
func (s *ListingService) Update(ctx context.Context, fields model.Fields, id string) (bool, error) {
	modified, err := s.store.UpdateListingByID(ctx, fields, id)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if modified > 0 {
		s.writes.Add(1)
		s.evict(ctx, id)
	}
	return modified > 0, nil
}

// Delete removes the listing and reports whether one existed.
func (s *ListingService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.store.DeleteListingByID(ctx, id)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if deleted > 0 {
		s.writes.Add(1)
		s.evict(ctx, id)
	}
	return deleted > 0, nil
}

func (s *ListingService) evict(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("listing_id", id).Msg("listing cache eviction failed")
	}
}
