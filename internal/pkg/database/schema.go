package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// schema is applied statement by statement; every statement is idempotent.
// The users table belongs to the account service and is only created here
// so that a fresh development database is usable.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id    TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS friends (
		user_id        TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		friend_user_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, friend_user_id),
		CONSTRAINT friends_no_self CHECK (user_id <> friend_user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS friend_requests (
		id           BIGSERIAL PRIMARY KEY,
		requester_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		requested_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		status       TEXT NOT NULL DEFAULT 'pending',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT friend_requests_no_self CHECK (requester_id <> requested_id),
		CONSTRAINT friend_requests_status CHECK (status IN ('pending', 'accepted'))
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS friend_requests_pending_pair
		ON friend_requests (requester_id, requested_id) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS friend_requests_requested
		ON friend_requests (requested_id) WHERE status = 'pending'`,

	`CREATE TABLE IF NOT EXISTS blocks (
		user_id         TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		blocked_user_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, blocked_user_id),
		CONSTRAINT blocks_no_self CHECK (user_id <> blocked_user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS locations (
		location_id   BIGSERIAL PRIMARY KEY,
		location_name TEXT NOT NULL,
		address_name  TEXT NOT NULL,
		latitude      DOUBLE PRECISION NOT NULL,
		longitude     DOUBLE PRECISION NOT NULL,
		CONSTRAINT locations_name_address_key UNIQUE (location_name, address_name)
	)`,

	`CREATE TABLE IF NOT EXISTS food_categories (
		category_id SERIAL PRIMARY KEY,
		category    TEXT NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS posting (
		p_id         BIGSERIAL PRIMARY KEY,
		p_title      TEXT NOT NULL,
		p_content    TEXT NOT NULL DEFAULT '',
		p_image_path TEXT NOT NULL DEFAULT '',
		file_path    TEXT NOT NULL DEFAULT '',
		p_location   BIGINT REFERENCES locations(location_id) ON DELETE SET NULL,
		p_category   INTEGER REFERENCES food_categories(category_id) ON DELETE SET NULL,
		like_num     SMALLINT NOT NULL DEFAULT 0,
		upload_date  TIMESTAMPTZ NOT NULL,
		modify_date  TIMESTAMPTZ NOT NULL,
		CONSTRAINT posting_like_flag CHECK (like_num IN (0, 1))
	)`,
}

// DefaultCategories seeds food_categories on a fresh database.
var DefaultCategories = []string{"한식", "중식", "일식", "양식", "분식", "카페", "술집"}

// Migrate applies the schema.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	log.Info().Int("statements", len(schema)).Msg("Schema applied")
	return nil
}

// SeedCategories inserts categories that are not present yet and returns
// how many rows were added.
func SeedCategories(ctx context.Context, db *sqlx.DB, names []string) (int64, error) {
	var added int64
	for _, name := range names {
		res, err := db.ExecContext(ctx,
			`INSERT INTO food_categories (category) VALUES ($1) ON CONFLICT (category) DO NOTHING`, name)
		if err != nil {
			return added, fmt.Errorf("seed category %q: %w", name, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return added, err
		}
		added += n
	}
	return added, nil
}
