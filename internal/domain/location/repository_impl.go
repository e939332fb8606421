package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

// NewRepository creates location repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ResolveOrCreate(ctx context.Context, loc *Location) (int64, error) {
	var id int64
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO locations (location_name, address_name, latitude, longitude)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (location_name, address_name) DO NOTHING
		RETURNING location_id
	`, loc.Name, loc.Address, loc.Latitude, loc.Longitude).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: insert location: %w", ErrStore, err)
	}

	// conflict: the row already exists, first write wins
	err = r.db.GetContext(ctx, &id,
		`SELECT location_id FROM locations WHERE location_name = $1 AND address_name = $2`,
		loc.Name, loc.Address)
	if err != nil {
		return 0, fmt.Errorf("%w: select location: %w", ErrStore, err)
	}
	return id, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Location, error) {
	var loc Location
	err := r.db.GetContext(ctx, &loc, `
		SELECT location_id, location_name, address_name, latitude, longitude
		FROM locations WHERE location_id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLocationNotFound
		}
		return nil, fmt.Errorf("%w: get location: %w", ErrStore, err)
	}
	return &loc, nil
}

func (r *repository) List(ctx context.Context) ([]*Location, error) {
	locations := []*Location{}
	err := r.db.SelectContext(ctx, &locations, `
		SELECT location_id, location_name, address_name, latitude, longitude
		FROM locations ORDER BY location_id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: list locations: %w", ErrStore, err)
	}
	return locations, nil
}
