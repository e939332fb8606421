package friend

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return NewRepository(sqlx.NewDb(raw, "postgres")), mock
}

func TestAcceptRequestCommitsBothEdges(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE friend_requests SET status = 'accepted'`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`WHERE requester_id = $1 AND requested_id = $2 AND status = 'pending'`)).
		WithArgs("bob", "alice").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO friends (user_id, friend_user_id)`)).
		WithArgs("bob", "alice").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	req := &FriendRequest{ID: 7, RequesterID: "alice", RequestedID: "bob", Status: RequestPending}
	if err := repo.AcceptRequest(context.Background(), req); err != nil {
		t.Fatalf("AcceptRequest: %v", err)
	}
	if req.Status != RequestAccepted {
		t.Fatalf("status = %s, want accepted", req.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAcceptRequestRollsBackWhenAlreadyAccepted(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE friend_requests SET status = 'accepted'`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	req := &FriendRequest{ID: 7, RequesterID: "alice", RequestedID: "bob", Status: RequestPending}
	if err := repo.AcceptRequest(context.Background(), req); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAcceptRequestRollsBackWhenReverseCloseFails(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE friend_requests SET status = 'accepted'`)).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`WHERE requester_id = $1 AND requested_id = $2 AND status = 'pending'`)).
		WithArgs("bob", "alice").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	req := &FriendRequest{ID: 7, RequesterID: "alice", RequestedID: "bob", Status: RequestPending}
	if err := repo.AcceptRequest(context.Background(), req); !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	if req.Status != RequestPending {
		t.Fatalf("status = %s, want pending after rollback", req.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBlockRemovesEdgeInsideTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)
	blockedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM friends WHERE user_id = $1 AND friend_user_id = $2`)).
		WithArgs("alice", "bob").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM friend_requests`)).
		WithArgs("alice", "bob").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO blocks (user_id, blocked_user_id)`)).
		WithArgs("alice", "bob").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(blockedAt))
	mock.ExpectCommit()

	block := &BlockRelation{UserID: "alice", BlockedUserID: "bob"}
	if err := repo.Block(context.Background(), block); err != nil {
		t.Fatalf("Block: %v", err)
	}
	if !block.CreatedAt.Equal(blockedAt) {
		t.Fatalf("created_at = %v, want %v", block.CreatedAt, blockedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBlockDuplicateRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM friends`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM friend_requests`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO blocks`)).
		WillReturnError(&pq.Error{Code: pgUniqueViolation, Constraint: "blocks_pkey"})
	mock.ExpectRollback()

	err := repo.Block(context.Background(), &BlockRelation{UserID: "alice", BlockedUserID: "bob"})
	if !errors.Is(err, ErrAlreadyBlocked) {
		t.Fatalf("expected ErrAlreadyBlocked, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateRequestConcurrentDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO friend_requests`)).
		WithArgs("alice", "bob", "pending").
		WillReturnError(&pq.Error{Code: pgUniqueViolation, Constraint: "friend_requests_pending_pair"})

	err := repo.CreateRequest(context.Background(), &FriendRequest{
		RequesterID: "alice",
		RequestedID: "bob",
		Status:      RequestPending,
	})
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}
}

func TestGetPendingRequestMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM friend_requests`)).
		WithArgs("alice", "bob").
		WillReturnRows(sqlmock.NewRows([]string{"id", "requester_id", "requested_id", "status", "created_at", "updated_at"}))

	req, err := repo.GetPendingRequest(context.Background(), "alice", "bob")
	if err != nil {
		t.Fatalf("GetPendingRequest: %v", err)
	}
	if req != nil {
		t.Fatalf("expected nil request, got %+v", req)
	}
}

func TestListFriendsWrapsDriverError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT friend_user_id FROM friends`)).
		WillReturnError(errors.New("connection reset"))

	if _, err := repo.ListFriends(context.Background(), "alice"); !errors.Is(err, ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

func TestMapWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		onUnique error
		want     error
	}{
		{name: "unique with mapping", err: &pq.Error{Code: "23505"}, onUnique: ErrDuplicateRequest, want: ErrDuplicateRequest},
		{name: "unique without mapping", err: &pq.Error{Code: "23505"}, want: ErrStore},
		{name: "fk violation", err: &pq.Error{Code: "23503", Constraint: "blocks_blocked_user_id_fkey"}, want: ErrUserNotFound},
		{name: "check violation", err: &pq.Error{Code: "23514", Constraint: "blocks_no_self"}, want: ErrSelfReference},
		{name: "plain error", err: errors.New("boom"), want: ErrStore},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapWriteError(context.Background(), "test", tc.err, tc.onUnique)
			if !errors.Is(mapped, tc.want) {
				t.Fatalf("expected errors.Is(%v), got %v", tc.want, mapped)
			}
		})
	}
}
