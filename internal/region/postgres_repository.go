package region

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL region repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a region by slug ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Region, error) {
	query := `
		SELECT id, name, population, mobility_pct, last_updated
		FROM regions
		WHERE id = $1
	`

	var region Region
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&region.ID,
		&region.Name,
		&region.Population,
		&region.MobilityPct,
		&region.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegionNotFound
		}
		return nil, err
	}

	return &region, nil
}

// List retrieves all regions ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]*Region, error) {
	query := `
		SELECT id, name, population, mobility_pct, last_updated
		FROM regions
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regions []*Region
	for rows.Next() {
		var region Region
		err := rows.Scan(
			&region.ID,
			&region.Name,
			&region.Population,
			&region.MobilityPct,
			&region.LastUpdated,
		)
		if err != nil {
			return nil, err
		}
		regions = append(regions, &region)
	}

	return regions, rows.Err()
}

// ReplaceAll swaps the lookup table inside a single transaction, so
// concurrent readers see either the old table or the new one.
func (r *PostgresRepository) ReplaceAll(ctx context.Context, regions []Region) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin region swap: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `DELETE FROM regions`); err != nil {
		return fmt.Errorf("clear regions: %w", err)
	}

	for i := range regions {
		region := &regions[i]
		_, err := tx.Exec(ctx, `
			INSERT INTO regions (id, name, population, mobility_pct, last_updated)
			VALUES ($1, $2, $3, $4, $5)
		`, region.ID, region.Name, region.Population, region.MobilityPct, region.LastUpdated)
		if err != nil {
			return fmt.Errorf("insert region %s: %w", region.ID, err)
		}
	}

	return tx.Commit(ctx)
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
