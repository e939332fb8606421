package user

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Directory answers existence questions about users owned by the account
// service. Users are opaque string ids here.
type Directory interface {
	Exists(ctx context.Context, userID string) (bool, error)
}

type repository struct {
	db *sqlx.DB
}

// NewDirectory creates a users-table backed directory
func NewDirectory(db *sqlx.DB) Directory {
	return &repository{db: db}
}

func (r *repository) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)`, userID)
	if err != nil {
		return false, fmt.Errorf("user directory exists: %w", err)
	}
	return exists, nil
}
