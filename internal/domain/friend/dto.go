package friend

import "time"

// SendRequestRequest for POST /friends/requests
type SendRequestRequest struct {
	TargetID string `json:"target_id" validate:"required,notblank,max=255"`
}

// FriendRequestResponse represents a pending request in API response
type FriendRequestResponse struct {
	ID          int64  `json:"id"`
	RequesterID string `json:"requester_id"`
	RequestedID string `json:"requested_id"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// FriendRequestFromEntity converts entity to response
func FriendRequestFromEntity(req *FriendRequest) *FriendRequestResponse {
	return &FriendRequestResponse{
		ID:          req.ID,
		RequesterID: req.RequesterID,
		RequestedID: req.RequestedID,
		Status:      string(req.Status),
		CreatedAt:   req.CreatedAt.Format(time.RFC3339),
	}
}

// BlockedUserResponse represents a blocked user in API response
type BlockedUserResponse struct {
	UserID    string `json:"user_id"`
	BlockedAt string `json:"blocked_at"`
}

// BlockRelationFromEntity converts entity to response
func BlockRelationFromEntity(block *BlockRelation) *BlockedUserResponse {
	return &BlockedUserResponse{
		UserID:    block.BlockedUserID,
		BlockedAt: block.CreatedAt.Format(time.RFC3339),
	}
}
