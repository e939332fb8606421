package post

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/zipmap/zip-api/internal/domain/location"
	"github.com/zipmap/zip-api/internal/pkg/imaging"
	"github.com/zipmap/zip-api/internal/pkg/logger"
	"github.com/zipmap/zip-api/internal/pkg/storage"
)

const keyPrefix = "posts"

// Upload is a file supplied with a create or update call
type Upload struct {
	// Name is the client-side file name; it is never used for storage
	Name   string
	Reader io.Reader
}

// CreateInput carries the fields of a new post
type CreateInput struct {
	Title      string
	Content    string
	Image      *Upload
	Attachment *Upload
	LocationID *int64
	CategoryID *int
}

// UpdateInput carries the editable fields of a post. A nil upload keeps the
// stored file.
type UpdateInput struct {
	Title      string
	Content    string
	Image      *Upload
	Attachment *Upload
	CategoryID *int
}

// Service handles posts business logic
type Service struct {
	repo   Repository
	files  storage.Storage
	images *imaging.Processor
	now    func() time.Time
}

// NewService creates post service
func NewService(repo Repository, files storage.Storage, images *imaging.Processor) *Service {
	return &Service{
		repo:   repo,
		files:  files,
		images: images,
		now:    time.Now,
	}
}

// CreatePost stores the uploaded files and inserts the post
func (s *Service) CreatePost(ctx context.Context, in CreateInput) (*Post, error) {
	now := s.now()

	imagePath, err := s.storeFile(ctx, in.Image, storage.KindImage, now)
	if err != nil {
		return nil, err
	}
	filePath, err := s.storeFile(ctx, in.Attachment, storage.KindAttachment, now)
	if err != nil {
		s.removeFiles(ctx, imagePath)
		return nil, err
	}

	post := &Post{
		Title:      in.Title,
		Content:    in.Content,
		ImagePath:  imagePath,
		FilePath:   filePath,
		LocationID: in.LocationID,
		CategoryID: in.CategoryID,
		UploadDate: now,
		ModifyDate: now,
	}
	if err := s.repo.Create(ctx, post); err != nil {
		s.removeFiles(ctx, imagePath, filePath)
		return nil, err
	}

	logger.FromContext(ctx).Info().Int64("post_id", post.ID).Msg("Post created")
	return post, nil
}

// UpdatePost overwrites title, content and category. Newly uploaded files
// replace the stored ones, which are then removed.
func (s *Service) UpdatePost(ctx context.Context, postID int64, in UpdateInput) (*Post, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	imagePath, err := s.storeFile(ctx, in.Image, storage.KindImage, now)
	if err != nil {
		return nil, err
	}
	filePath, err := s.storeFile(ctx, in.Attachment, storage.KindAttachment, now)
	if err != nil {
		s.removeFiles(ctx, imagePath)
		return nil, err
	}

	var replaced []string
	if imagePath != "" {
		replaced = append(replaced, post.ImagePath)
		post.ImagePath = imagePath
	}
	if filePath != "" {
		replaced = append(replaced, post.FilePath)
		post.FilePath = filePath
	}
	post.Title = in.Title
	post.Content = in.Content
	post.CategoryID = in.CategoryID
	post.ModifyDate = now

	if err := s.repo.Update(ctx, post); err != nil {
		s.removeFiles(ctx, imagePath, filePath)
		return nil, err
	}

	s.removeFiles(ctx, replaced...)
	logger.FromContext(ctx).Info().Int64("post_id", post.ID).Msg("Post updated")
	return post, nil
}

// DeletePost hard-deletes the post and then its stored files
func (s *Service) DeletePost(ctx context.Context, postID int64) error {
	post, err := s.repo.Delete(ctx, postID)
	if err != nil {
		return err
	}
	s.removeFiles(ctx, post.ImagePath, post.FilePath)
	logger.FromContext(ctx).Info().Int64("post_id", postID).Msg("Post deleted")
	return nil
}

// ToggleLike flips the post's like flag and returns the new value (0 or 1)
func (s *Service) ToggleLike(ctx context.Context, postID int64) (int, error) {
	return s.repo.ToggleLike(ctx, postID)
}

// ListPosts returns all posts, newest first
func (s *Service) ListPosts(ctx context.Context) ([]*Post, error) {
	return s.repo.List(ctx)
}

// GetPost returns a single post
func (s *Service) GetPost(ctx context.Context, postID int64) (*Post, error) {
	return s.repo.GetByID(ctx, postID)
}

// OpenAttachment opens the stored attachment of a post and returns it with
// its storage key. The caller closes the reader.
func (s *Service) OpenAttachment(ctx context.Context, postID int64) (io.ReadCloser, string, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, "", err
	}
	if post.FilePath == "" {
		return nil, "", ErrNoAttachment
	}

	rc, err := s.files.Get(ctx, post.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.FromContext(ctx).Warn().Int64("post_id", postID).Str("key", post.FilePath).Msg("Attachment missing from storage")
			return nil, "", ErrNoAttachment
		}
		return nil, "", fmt.Errorf("open attachment: %w", err)
	}
	return rc, post.FilePath, nil
}

// PostLocation returns the location attached to a post. A post without a
// location yields found == false and no error.
func (s *Service) PostLocation(ctx context.Context, postID int64) (*location.Location, bool, error) {
	return s.repo.LocationFor(ctx, postID)
}

// ListCategories returns the food categories
func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

// FileURL returns the public URL for a stored path, or "" when empty
func (s *Service) FileURL(path string) string {
	if path == "" {
		return ""
	}
	return s.files.GetURL(path)
}

// storeFile validates and stores up, returning its key. A nil upload stores
// nothing and returns "".
func (s *Service) storeFile(ctx context.Context, up *Upload, kind storage.Kind, now time.Time) (string, error) {
	if up == nil || up.Reader == nil {
		return "", nil
	}

	file, err := storage.ValidateFile(up.Reader, kind, up.Name)
	if err != nil {
		if errors.Is(err, storage.ErrFileTooLarge) ||
			errors.Is(err, storage.ErrInvalidMimeType) ||
			errors.Is(err, storage.ErrEmptyFile) {
			return "", fmt.Errorf("%w: %s: %w", ErrInvalidFile, kind, err)
		}
		return "", err
	}

	data := file.Data
	if kind == storage.KindImage && s.images != nil {
		res, err := s.images.Fit(file.Data, file.MimeType)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrInvalidFile, kind, err)
		}
		if res.Resized {
			logger.FromContext(ctx).Debug().Int("width", res.Width).Int("height", res.Height).Msg("Post image downscaled")
		}
		data = res.Data
	}

	key := storage.GenerateKey(keyPrefix, file.MimeType, now)
	if err := s.files.Put(ctx, key, bytes.NewReader(data), file.MimeType); err != nil {
		return "", fmt.Errorf("store %s: %w", kind, err)
	}
	return key, nil
}

// removeFiles deletes stored files best-effort; failures are only logged
func (s *Service) removeFiles(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.files.Delete(ctx, key); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("Failed to remove stored file")
		}
	}
}
