package friend

import "time"

// RequestStatus is the lifecycle state of a friend request
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
)

// FriendRequest is a single solicitation from RequesterID to RequestedID.
// The sender sees it as outgoing, the recipient as incoming.
type FriendRequest struct {
	ID          int64         `db:"id" json:"id"`
	RequesterID string        `db:"requester_id" json:"requester_id"`
	RequestedID string        `db:"requested_id" json:"requested_id"`
	Status      RequestStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// BlockRelation represents a directed user-to-user block
type BlockRelation struct {
	UserID        string    `db:"user_id" json:"user_id"`
	BlockedUserID string    `db:"blocked_user_id" json:"blocked_user_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
