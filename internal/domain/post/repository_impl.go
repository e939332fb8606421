package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/zipmap/zip-api/internal/domain/location"
)

const pgForeignKeyViolation = "23503"

const postColumns = `p_id, p_title, p_content, p_image_path, file_path, p_location, p_category, like_num, upload_date, modify_date`

type repository struct {
	db *sqlx.DB
}

// NewRepository creates post repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]*Post, error) {
	posts := []*Post{}
	query := `SELECT ` + postColumns + ` FROM posting ORDER BY upload_date DESC, p_id DESC`
	if err := r.db.SelectContext(ctx, &posts, query); err != nil {
		return nil, fmt.Errorf("%w: list posts: %w", ErrStore, err)
	}
	return posts, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Post, error) {
	var post Post
	query := `SELECT ` + postColumns + ` FROM posting WHERE p_id = $1`
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: get post: %w", ErrStore, err)
	}
	return &post, nil
}

func (r *repository) Create(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posting (p_title, p_content, p_image_path, file_path, p_location, p_category, like_num, upload_date, modify_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING p_id
	`
	err := r.db.QueryRowxContext(ctx, query,
		post.Title, post.Content, post.ImagePath, post.FilePath,
		post.LocationID, post.CategoryID, post.Like, post.UploadDate, post.ModifyDate,
	).Scan(&post.ID)
	if err != nil {
		return mapWriteError("create post", err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, post *Post) error {
	query := `
		UPDATE posting
		SET p_title = $2, p_content = $3, p_image_path = $4, file_path = $5, p_category = $6, modify_date = $7
		WHERE p_id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		post.ID, post.Title, post.Content, post.ImagePath, post.FilePath, post.CategoryID, post.ModifyDate,
	)
	if err != nil {
		return mapWriteError("update post", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: update post: %w", ErrStore, err)
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) (*Post, error) {
	var post Post
	query := `DELETE FROM posting WHERE p_id = $1 RETURNING ` + postColumns
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("%w: delete post: %w", ErrStore, err)
	}
	return &post, nil
}

func (r *repository) ToggleLike(ctx context.Context, id int64) (int, error) {
	var like int
	err := r.db.GetContext(ctx, &like,
		`UPDATE posting SET like_num = 1 - like_num WHERE p_id = $1 RETURNING like_num`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrPostNotFound
		}
		return 0, fmt.Errorf("%w: toggle like: %w", ErrStore, err)
	}
	return like, nil
}

type postLocationRow struct {
	PostID     int64           `db:"p_id"`
	LocationID sql.NullInt64   `db:"location_id"`
	Name       sql.NullString  `db:"location_name"`
	Address    sql.NullString  `db:"address_name"`
	Latitude   sql.NullFloat64 `db:"latitude"`
	Longitude  sql.NullFloat64 `db:"longitude"`
}

func (r *repository) LocationFor(ctx context.Context, id int64) (*location.Location, bool, error) {
	var row postLocationRow
	query := `
		SELECT p.p_id, l.location_id, l.location_name, l.address_name, l.latitude, l.longitude
		FROM posting p
		LEFT JOIN locations l ON l.location_id = p.p_location
		WHERE p.p_id = $1
	`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, ErrPostNotFound
		}
		return nil, false, fmt.Errorf("%w: post location: %w", ErrStore, err)
	}
	if !row.LocationID.Valid {
		return nil, false, nil
	}
	return &location.Location{
		ID:        row.LocationID.Int64,
		Name:      row.Name.String,
		Address:   row.Address.String,
		Latitude:  row.Latitude.Float64,
		Longitude: row.Longitude.Float64,
	}, true, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]*Category, error) {
	categories := []*Category{}
	query := `SELECT category_id, category FROM food_categories ORDER BY category_id`
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("%w: list categories: %w", ErrStore, err)
	}
	return categories, nil
}

func mapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
		return fmt.Errorf("%w: %s", ErrInvalidReference, pqErr.Constraint)
	}
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
