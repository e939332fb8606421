package friend

import (
	"context"
	"fmt"

	"github.com/zipmap/zip-api/internal/domain/user"
	"github.com/zipmap/zip-api/internal/pkg/logger"
)

// Service handles user relationships business logic
type Service struct {
	repo  Repository
	users user.Directory
}

// NewService creates new relationships service
func NewService(repo Repository, users user.Directory) *Service {
	return &Service{repo: repo, users: users}
}

// ListFriends returns the ids userID has a friend edge to
func (s *Service) ListFriends(ctx context.Context, userID string) ([]string, error) {
	return s.repo.ListFriends(ctx, userID)
}

// SendFriendRequest records a pending request from userID to targetID
func (s *Service) SendFriendRequest(ctx context.Context, userID, targetID string) (*FriendRequest, error) {
	if err := s.checkTarget(ctx, userID, targetID); err != nil {
		return nil, err
	}

	friends, err := s.repo.IsFriend(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	pending, err := s.repo.GetPendingRequest(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrDuplicateRequest
	}

	req := &FriendRequest{
		RequesterID: userID,
		RequestedID: targetID,
		Status:      RequestPending,
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Int64("request_id", req.ID).
		Str("requester_id", userID).
		Str("requested_id", targetID).
		Msg("Friend request sent")
	return req, nil
}

// AcceptFriendRequest accepts the pending request requesterID sent to userID.
// Both friend edges are created and the request leaves both views. A user
// cannot accept a request from someone they have blocked.
func (s *Service) AcceptFriendRequest(ctx context.Context, userID, requesterID string) error {
	req, err := s.repo.GetPendingRequest(ctx, requesterID, userID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}

	blocked, err := s.repo.HasBlocked(ctx, userID, requesterID)
	if err != nil {
		return err
	}
	if blocked {
		return ErrAlreadyBlocked
	}

	if err := s.repo.AcceptRequest(ctx, req); err != nil {
		return err
	}

	logger.FromContext(ctx).Info().
		Int64("request_id", req.ID).
		Str("user_id", userID).
		Str("friend_user_id", requesterID).
		Msg("Friend request accepted")
	return nil
}

// BlockUser blocks targetID for userID, drops userID's friend edge to
// targetID and discards pending requests between the two. The reverse edge
// is left alone.
func (s *Service) BlockUser(ctx context.Context, userID, targetID string) (*BlockRelation, error) {
	if err := s.checkTarget(ctx, userID, targetID); err != nil {
		return nil, err
	}

	blocked, err := s.repo.HasBlocked(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrAlreadyBlocked
	}

	block := &BlockRelation{UserID: userID, BlockedUserID: targetID}
	if err := s.repo.Block(ctx, block); err != nil {
		return nil, err
	}
	return block, nil
}

// UnblockUser removes the block userID placed on targetID
func (s *Service) UnblockUser(ctx context.Context, userID, targetID string) error {
	removed, err := s.repo.Unblock(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotBlocked
	}
	return nil
}

// RemoveFriend deletes the directed edge userID -> targetID only
func (s *Service) RemoveFriend(ctx context.Context, userID, targetID string) error {
	removed, err := s.repo.RemoveFriend(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFriends
	}
	return nil
}

// ListBlocked returns all users blocked by the given user
func (s *Service) ListBlocked(ctx context.Context, userID string) ([]*BlockRelation, error) {
	return s.repo.ListBlocks(ctx, userID)
}

// ListIncomingRequests returns pending requests sent to userID
func (s *Service) ListIncomingRequests(ctx context.Context, userID string) ([]*FriendRequest, error) {
	return s.repo.ListIncoming(ctx, userID)
}

// ListOutgoingRequests returns pending requests sent by userID
func (s *Service) ListOutgoingRequests(ctx context.Context, userID string) ([]*FriendRequest, error) {
	return s.repo.ListOutgoing(ctx, userID)
}

func (s *Service) checkTarget(ctx context.Context, userID, targetID string) error {
	if userID == targetID {
		return ErrSelfReference
	}
	exists, err := s.users.Exists(ctx, targetID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}
