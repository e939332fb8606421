package friend

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRequestNotFound  = errors.New("friend request not found")
	ErrSelfReference    = errors.New("cannot target yourself")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrDuplicateRequest = errors.New("friend request already sent")
	ErrAlreadyBlocked   = errors.New("user already blocked")
	ErrNotBlocked       = errors.New("user is not blocked")
	ErrNotFriends       = errors.New("user is not in your friend list")

	// ErrStore wraps failures of the underlying database
	ErrStore = errors.New("relationship store error")
)
