package friend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/zipmap/zip-api/internal/pkg/logger"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new relationships repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListFriends(ctx context.Context, userID string) ([]string, error) {
	friends := []string{}
	query := `SELECT friend_user_id FROM friends WHERE user_id = $1 ORDER BY created_at, friend_user_id`
	if err := r.db.SelectContext(ctx, &friends, query, userID); err != nil {
		return nil, storeError(ctx, "friends.list", err)
	}
	return friends, nil
}

func (r *repository) IsFriend(ctx context.Context, userID, friendID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM friends WHERE user_id = $1 AND friend_user_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, userID, friendID); err != nil {
		return false, storeError(ctx, "friends.exists", err)
	}
	return exists, nil
}

func (r *repository) RemoveFriend(ctx context.Context, userID, friendID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM friends WHERE user_id = $1 AND friend_user_id = $2`, userID, friendID)
	if err != nil {
		return false, storeError(ctx, "friends.delete", err)
	}
	return affected(ctx, res, "friends.delete")
}

func (r *repository) GetPendingRequest(ctx context.Context, requesterID, requestedID string) (*FriendRequest, error) {
	query := `
		SELECT id, requester_id, requested_id, status, created_at, updated_at
		FROM friend_requests
		WHERE requester_id = $1 AND requested_id = $2 AND status = 'pending'
	`
	var req FriendRequest
	if err := r.db.GetContext(ctx, &req, query, requesterID, requestedID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeError(ctx, "friend_requests.get", err)
	}
	return &req, nil
}

func (r *repository) CreateRequest(ctx context.Context, req *FriendRequest) error {
	query := `
		INSERT INTO friend_requests (requester_id, requested_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, req.RequesterID, req.RequestedID, req.Status).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return mapWriteError(ctx, "friend_requests.create", err, ErrDuplicateRequest)
	}
	return nil
}

func (r *repository) AcceptRequest(ctx context.Context, req *FriendRequest) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeError(ctx, "friend_requests.accept.begin", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE friend_requests SET status = 'accepted', updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`, req.ID)
	if err != nil {
		return storeError(ctx, "friend_requests.accept.update", err)
	}
	updated, err := affected(ctx, res, "friend_requests.accept.update")
	if err != nil {
		return err
	}
	if !updated {
		// accepted concurrently
		return ErrRequestNotFound
	}

	// a crossing request in the other direction is settled by the same friendship
	if _, err := tx.ExecContext(ctx, `
		UPDATE friend_requests SET status = 'accepted', updated_at = now()
		WHERE requester_id = $1 AND requested_id = $2 AND status = 'pending'
	`, req.RequestedID, req.RequesterID); err != nil {
		return storeError(ctx, "friend_requests.accept.reverse", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO friends (user_id, friend_user_id)
		VALUES ($1, $2), ($2, $1)
		ON CONFLICT DO NOTHING
	`, req.RequestedID, req.RequesterID)
	if err != nil {
		return mapWriteError(ctx, "friends.accept.insert", err, nil)
	}

	if err := tx.Commit(); err != nil {
		return storeError(ctx, "friend_requests.accept.commit", err)
	}

	req.Status = RequestAccepted
	return nil
}

func (r *repository) ListIncoming(ctx context.Context, userID string) ([]*FriendRequest, error) {
	return r.listRequests(ctx, "friend_requests.incoming", `
		SELECT id, requester_id, requested_id, status, created_at, updated_at
		FROM friend_requests
		WHERE requested_id = $1 AND status = 'pending'
		ORDER BY created_at, id
	`, userID)
}

func (r *repository) ListOutgoing(ctx context.Context, userID string) ([]*FriendRequest, error) {
	return r.listRequests(ctx, "friend_requests.outgoing", `
		SELECT id, requester_id, requested_id, status, created_at, updated_at
		FROM friend_requests
		WHERE requester_id = $1 AND status = 'pending'
		ORDER BY created_at, id
	`, userID)
}

func (r *repository) listRequests(ctx context.Context, op, query, userID string) ([]*FriendRequest, error) {
	requests := []*FriendRequest{}
	if err := r.db.SelectContext(ctx, &requests, query, userID); err != nil {
		return nil, storeError(ctx, op, err)
	}
	return requests, nil
}

func (r *repository) HasBlocked(ctx context.Context, userID, targetID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM blocks WHERE user_id = $1 AND blocked_user_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, userID, targetID); err != nil {
		return false, storeError(ctx, "blocks.exists", err)
	}
	return exists, nil
}

func (r *repository) Block(ctx context.Context, block *BlockRelation) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeError(ctx, "blocks.create.begin", err)
	}
	defer tx.Rollback()

	// only the blocker's edge is removed; the reverse edge stays
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM friends WHERE user_id = $1 AND friend_user_id = $2`,
		block.UserID, block.BlockedUserID,
	); err != nil {
		return storeError(ctx, "blocks.create.unfriend", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM friend_requests
		WHERE status = 'pending'
		  AND ((requester_id = $1 AND requested_id = $2) OR (requester_id = $2 AND requested_id = $1))
	`, block.UserID, block.BlockedUserID); err != nil {
		return storeError(ctx, "blocks.create.requests", err)
	}

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO blocks (user_id, blocked_user_id)
		VALUES ($1, $2)
		RETURNING created_at
	`, block.UserID, block.BlockedUserID).Scan(&block.CreatedAt)
	if err != nil {
		return mapWriteError(ctx, "blocks.create.insert", err, ErrAlreadyBlocked)
	}

	if err := tx.Commit(); err != nil {
		return storeError(ctx, "blocks.create.commit", err)
	}
	return nil
}

func (r *repository) Unblock(ctx context.Context, userID, targetID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blocks WHERE user_id = $1 AND blocked_user_id = $2`, userID, targetID)
	if err != nil {
		return false, storeError(ctx, "blocks.delete", err)
	}
	return affected(ctx, res, "blocks.delete")
}

func (r *repository) ListBlocks(ctx context.Context, userID string) ([]*BlockRelation, error) {
	blocks := []*BlockRelation{}
	query := `SELECT user_id, blocked_user_id, created_at FROM blocks WHERE user_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &blocks, query, userID); err != nil {
		return nil, storeError(ctx, "blocks.list", err)
	}
	return blocks, nil
}

func affected(ctx context.Context, res sql.Result, op string) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeError(ctx, op, err)
	}
	return n > 0, nil
}

// mapWriteError translates constraint violations into domain errors.
// onUnique may be nil when a unique violation is not expected.
func mapWriteError(ctx context.Context, op string, err error, onUnique error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pgUniqueViolation:
			if onUnique != nil {
				return onUnique
			}
		case pgForeignKeyViolation:
			return ErrUserNotFound
		case pgCheckViolation:
			return ErrSelfReference
		}
	}
	return storeError(ctx, op, err)
}

func storeError(ctx context.Context, op string, err error) error {
	evt := logger.FromContext(ctx).Error().Str("query", op).Err(err)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		evt = evt.Str("pg_code", string(pqErr.Code)).Str("pg_constraint", pqErr.Constraint)
	}
	evt.Msg("relationship store failure")
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
