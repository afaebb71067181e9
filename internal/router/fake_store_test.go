package router_test

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/deppfellow/listings-api/internal/model"
	"github.com/deppfellow/listings-api/internal/service"
)

// memoryStore is an in-memory service.ListingStore ordered by identifier.
type memoryStore struct {
	mu     sync.Mutex
	docs   map[string]model.Listing
	nextID int

	// err, when set, is returned by every operation.
	err error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{docs: make(map[string]model.Listing)}
}

var _ service.ListingStore = (*memoryStore)(nil)

func (m *memoryStore) AddNewListing(_ context.Context, fields model.Fields) (model.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	m.nextID++
	id := fmt.Sprintf("%024x", m.nextID)

	listing := model.Listing{}
	for k, v := range fields.WithoutID() {
		listing[k] = v
	}
	listing[model.IDField] = id
	m.docs[id] = listing

	return copyListing(listing), nil
}

func (m *memoryStore) GetAllListings(_ context.Context, page, perPage int, name string) ([]model.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	ids := make([]string, 0, len(m.docs))
	for id, doc := range m.docs {
		if name != "" && !strings.Contains(strings.ToLower(doc.Name()), strings.ToLower(name)) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	listings := []model.Listing{}
	if page-1 > len(ids)/perPage {
		return listings, nil
	}

	start := (page - 1) * perPage
	end := len(ids)
	if perPage < end-start {
		end = start + perPage
	}
	for _, id := range ids[start:end] {
		listings = append(listings, copyListing(m.docs[id]))
	}
	return listings, nil
}

func (m *memoryStore) GetListingByID(_ context.Context, id string) (model.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}

	doc, ok := m.docs[id]
	if !ok {
		return nil, service.ErrListingNotFound
	}
	return copyListing(doc), nil
}

func (m *memoryStore) UpdateListingByID(_ context.Context, fields model.Fields, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}

	doc, ok := m.docs[id]
	set := fields.WithoutID()
	if !ok || len(set) == 0 {
		return 0, nil
	}

	changed := false
	for k, v := range set {
		if current, exists := doc[k]; !exists || !reflect.DeepEqual(current, v) {
			doc[k] = v
			changed = true
		}
	}
	if !changed {
		return 0, nil
	}
	return 1, nil
}

func (m *memoryStore) DeleteListingByID(_ context.Context, id string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}

	if _, ok := m.docs[id]; !ok {
		return 0, nil
	}
	delete(m.docs, id)
	return 1, nil
}

func copyListing(l model.Listing) model.Listing {
	out := make(model.Listing, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}
