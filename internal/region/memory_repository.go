package region

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository, used for
// CSV-file deployments and tests. Refreshes build a new table and swap it in
// whole, so readers never see a partial update.
type InMemoryRepository struct {
	mu      sync.RWMutex
	regions map[string]*Region
}

// NewInMemoryRepository creates an in-memory region repository, optionally
// pre-populated.
func NewInMemoryRepository(regions ...Region) *InMemoryRepository {
	r := &InMemoryRepository{regions: make(map[string]*Region)}
	for i := range regions {
		cpy := regions[i]
		r.regions[cpy.ID] = &cpy
	}
	return r
}

// Get retrieves a region by slug ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Region, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	region, ok := r.regions[id]
	if !ok {
		return nil, ErrRegionNotFound
	}

	cpy := *region
	return &cpy, nil
}

// List retrieves all regions ordered by name.
func (r *InMemoryRepository) List(_ context.Context) ([]*Region, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regions := make([]*Region, 0, len(r.regions))
	for _, region := range r.regions {
		cpy := *region
		regions = append(regions, &cpy)
	}

	sort.Slice(regions, func(a, b int) bool {
		return regions[a].Name < regions[b].Name
	})
	return regions, nil
}

// ReplaceAll builds a fresh table and swaps it in atomically.
func (r *InMemoryRepository) ReplaceAll(_ context.Context, regions []Region) error {
	next := make(map[string]*Region, len(regions))
	for i := range regions {
		cpy := regions[i]
		next[cpy.ID] = &cpy
	}

	r.mu.Lock()
	r.regions = next
	r.mu.Unlock()
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
