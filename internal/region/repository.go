package region

import "context"

// Repository defines the interface for region lookup tables.
type Repository interface {
	// Get retrieves a region by slug ID.
	// Returns ErrRegionNotFound if the region doesn't exist.
	Get(ctx context.Context, id string) (*Region, error)

	// List retrieves all regions ordered by name.
	List(ctx context.Context) ([]*Region, error)

	// ReplaceAll swaps the full lookup table for a new one. The swap is
	// atomic: in-flight readers never observe a partially updated table.
	ReplaceAll(ctx context.Context, regions []Region) error
}
