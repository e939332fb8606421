package post

import (
	"context"

	"github.com/zipmap/zip-api/internal/domain/location"
)

// Repository defines post data access
type Repository interface {
	List(ctx context.Context) ([]*Post, error)
	GetByID(ctx context.Context, id int64) (*Post, error)
	Create(ctx context.Context, post *Post) error
	// Update overwrites title, content, paths, category and modify date
	Update(ctx context.Context, post *Post) error
	// Delete removes the row and returns it so stored files can be cleaned up
	Delete(ctx context.Context, id int64) (*Post, error)
	// ToggleLike flips the like flag and returns the new value
	ToggleLike(ctx context.Context, id int64) (int, error)
	// LocationFor returns the post's location; found is false when the post has none
	LocationFor(ctx context.Context, id int64) (loc *location.Location, found bool, err error)
	ListCategories(ctx context.Context) ([]*Category, error)
}
