package post

import (
	"time"

	"github.com/zipmap/zip-api/internal/domain/location"
)

// PostForm holds the text fields of POST /posts and PUT /posts/{id}
type PostForm struct {
	Title   string `form:"title" validate:"required,notblank,max=200"`
	Content string `form:"content" validate:"max=10000"`
}

// PostResponse represents a post in API response
type PostResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	ImagePath  string `json:"image_path,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	FilePath   string `json:"file_path,omitempty"`
	FileURL    string `json:"file_url,omitempty"`
	LocationID *int64 `json:"location_id"`
	CategoryID *int   `json:"category_id"`
	Liked      bool   `json:"liked"`
	UploadDate string `json:"upload_date"`
	ModifyDate string `json:"modify_date"`
}

// PostResponseFromEntity converts entity to response
func PostResponseFromEntity(p *Post, fileURL func(string) string) *PostResponse {
	return &PostResponse{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		ImagePath:  p.ImagePath,
		ImageURL:   fileURL(p.ImagePath),
		FilePath:   p.FilePath,
		FileURL:    fileURL(p.FilePath),
		LocationID: p.LocationID,
		CategoryID: p.CategoryID,
		Liked:      p.Liked(),
		UploadDate: p.UploadDate.Format(time.RFC3339),
		ModifyDate: p.ModifyDate.Format(time.RFC3339),
	}
}

// LikeResponse is returned by POST /posts/{id}/like
type LikeResponse struct {
	ID    int64 `json:"id"`
	Like  int   `json:"like"`
	Liked bool  `json:"liked"`
}

// PostLocationResponse is returned by GET /posts/{id}/location
type PostLocationResponse struct {
	Found    bool               `json:"found"`
	Location *location.Location `json:"location,omitempty"`
}
