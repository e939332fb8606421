package post

import "errors"

var (
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidReference is returned when a location or category id does not exist
	ErrInvalidReference = errors.New("referenced location or category does not exist")

	// ErrInvalidFile wraps storage validation failures of uploaded files
	ErrInvalidFile = errors.New("invalid uploaded file")

	// ErrNoAttachment is returned when a post has no downloadable file
	ErrNoAttachment = errors.New("post has no attachment")

	ErrStore = errors.New("post store error")
)
