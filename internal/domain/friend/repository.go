package friend

import "context"

// Repository defines relationship data access
type Repository interface {
	ListFriends(ctx context.Context, userID string) ([]string, error)
	IsFriend(ctx context.Context, userID, friendID string) (bool, error)
	RemoveFriend(ctx context.Context, userID, friendID string) (bool, error)

	GetPendingRequest(ctx context.Context, requesterID, requestedID string) (*FriendRequest, error)
	CreateRequest(ctx context.Context, req *FriendRequest) error
	// AcceptRequest creates both friend edges and closes the request atomically
	AcceptRequest(ctx context.Context, req *FriendRequest) error
	ListIncoming(ctx context.Context, userID string) ([]*FriendRequest, error)
	ListOutgoing(ctx context.Context, userID string) ([]*FriendRequest, error)

	HasBlocked(ctx context.Context, userID, targetID string) (bool, error)
	// Block removes the userID->targetID edge and records the block atomically
	Block(ctx context.Context, block *BlockRelation) error
	Unblock(ctx context.Context, userID, targetID string) (bool, error)
	ListBlocks(ctx context.Context, userID string) ([]*BlockRelation, error)
}
