package post

import "time"

// Post is a stored posting row
type Post struct {
	ID         int64     `db:"p_id"`
	Title      string    `db:"p_title"`
	Content    string    `db:"p_content"`
	ImagePath  string    `db:"p_image_path"`
	FilePath   string    `db:"file_path"`
	LocationID *int64    `db:"p_location"`
	CategoryID *int      `db:"p_category"`
	Like       int       `db:"like_num"`
	UploadDate time.Time `db:"upload_date"`
	ModifyDate time.Time `db:"modify_date"`
}

// Liked reports the global like flag
func (p *Post) Liked() bool {
	return p.Like == 1
}

// Category is a food category lookup row
type Category struct {
	ID   int    `db:"category_id" json:"id"`
	Name string `db:"category" json:"name"`
}
