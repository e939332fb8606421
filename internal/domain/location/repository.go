package location

import "context"

// Repository defines location data access
type Repository interface {
	// ResolveOrCreate returns the id stored for (name, address), inserting a
	// row with the given coordinates when none exists yet.
	ResolveOrCreate(ctx context.Context, loc *Location) (int64, error)
	GetByID(ctx context.Context, id int64) (*Location, error)
	List(ctx context.Context) ([]*Location, error)
}
