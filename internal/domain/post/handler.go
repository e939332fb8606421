package post

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zipmap/zip-api/internal/pkg/errorhandler"
	"github.com/zipmap/zip-api/internal/pkg/logger"
	"github.com/zipmap/zip-api/internal/pkg/response"
	"github.com/zipmap/zip-api/internal/pkg/storage"
	"github.com/zipmap/zip-api/internal/pkg/validator"
)

const (
	// MaxUploadSize bounds the whole multipart body
	MaxUploadSize = 32 << 20
	maxFormMemory = 8 << 20
)

// Handler handles post HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates post handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /posts
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.ListPosts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]*PostResponse, 0, len(posts))
	for _, p := range posts {
		items = append(items, PostResponseFromEntity(p, h.service.FileURL))
	}
	response.OK(w, items)
}

// GetByID handles GET /posts/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathPostID(w, r)
	if !ok {
		return
	}

	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, PostResponseFromEntity(post, h.service.FileURL))
}

// Create handles POST /posts
// Multipart form: title, content, location_id?, category_id?, image?, file?
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, files, ok := parsePostForm(w, r)
	if !ok {
		return
	}
	defer files.close()

	locationID, err := optionalInt64(r.FormValue("location_id"))
	if err != nil {
		response.ValidationError(w, map[string]string{"location_id": "Must be a positive integer"})
		return
	}
	categoryID, err := optionalInt(r.FormValue("category_id"))
	if err != nil {
		response.ValidationError(w, map[string]string{"category_id": "Must be a positive integer"})
		return
	}

	post, err := h.service.CreatePost(r.Context(), CreateInput{
		Title:      form.Title,
		Content:    form.Content,
		Image:      files.image,
		Attachment: files.attachment,
		LocationID: locationID,
		CategoryID: categoryID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, PostResponseFromEntity(post, h.service.FileURL))
}

// Update handles PUT /posts/{id}
// Multipart form: title, content, category_id?, image?, file?
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathPostID(w, r)
	if !ok {
		return
	}

	form, files, ok := parsePostForm(w, r)
	if !ok {
		return
	}
	defer files.close()

	categoryID, err := optionalInt(r.FormValue("category_id"))
	if err != nil {
		response.ValidationError(w, map[string]string{"category_id": "Must be a positive integer"})
		return
	}

	post, err := h.service.UpdatePost(r.Context(), id, UpdateInput{
		Title:      form.Title,
		Content:    form.Content,
		Image:      files.image,
		Attachment: files.attachment,
		CategoryID: categoryID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, PostResponseFromEntity(post, h.service.FileURL))
}

// Delete handles DELETE /posts/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathPostID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePost(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// ToggleLike handles POST /posts/{id}/like
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathPostID(w, r)
	if !ok {
		return
	}

	like, err := h.service.ToggleLike(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, LikeResponse{ID: id, Like: like, Liked: like == 1})
}

// Location handles GET /posts/{id}/location
func (h *Handler) Location(w http.ResponseWriter, r *http.Request) {
	id, ok := pathPostID(w, r)
	if !ok {
		return
	}

	loc, found, err := h.service.PostLocation(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, PostLocationResponse{Found: found, Location: loc})
}

// DownloadFile handles GET /posts/{id}/file
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathPostID(w, r)
	if !ok {
		return
	}

	rc, key, err := h.service.OpenAttachment(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer rc.Close()

	name := path.Base(key)
	w.Header().Set("Content-Type", storage.MimeForExtension(path.Ext(name)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logger.FromContext(r.Context()).Warn().Err(err).Int64("post_id", id).Msg("Attachment download interrupted")
	}
}

// ListCategories handles GET /categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, categories)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, ErrPostNotFound):
		errorhandler.HandleError(ctx, w, http.StatusNotFound, "POST_NOT_FOUND", "Post not found", err)
	case errors.Is(err, ErrNoAttachment):
		errorhandler.HandleError(ctx, w, http.StatusNotFound, "NO_ATTACHMENT", "Post has no attachment", err)
	case errors.Is(err, ErrInvalidFile):
		errorhandler.HandleError(ctx, w, http.StatusBadRequest, "INVALID_FILE", err.Error(), err)
	case errors.Is(err, ErrInvalidReference):
		errorhandler.HandleError(ctx, w, http.StatusUnprocessableEntity, "INVALID_REFERENCE", "Location or category does not exist", err)
	default:
		errorhandler.Internal(ctx, w, err)
	}
}

type formFiles struct {
	image      *Upload
	attachment *Upload
	closers    []multipart.File
}

func (f *formFiles) close() {
	for _, c := range f.closers {
		c.Close()
	}
}

func parsePostForm(w http.ResponseWriter, r *http.Request) (*PostForm, *formFiles, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		response.BadRequest(w, "File too large or invalid form")
		return nil, nil, false
	}

	form := &PostForm{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
	}
	if errors := validator.Validate(form); errors != nil {
		response.ValidationError(w, errors)
		return nil, nil, false
	}

	files := &formFiles{}
	for _, field := range []string{"image", "file"} {
		file, header, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			files.close()
			response.BadRequest(w, "Invalid "+field+" upload")
			return nil, nil, false
		}
		files.closers = append(files.closers, file)

		up := &Upload{Name: header.Filename, Reader: file}
		if field == "image" {
			files.image = up
		} else {
			files.attachment = up
		}
	}
	return form, files, true
}

func pathPostID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid post ID")
		return 0, false
	}
	return id, true
}

func optionalInt64(raw string) (*int64, error) {
	return parseOptionalID(raw, 64)
}

// optionalInt parses a category id, which is a 32-bit column
func optionalInt(raw string) (*int, error) {
	v, err := parseOptionalID(raw, 32)
	if err != nil || v == nil {
		return nil, err
	}
	i := int(*v)
	return &i, nil
}

// parseOptionalID parses a positive id that fits in bitSize bits. An empty
// value yields nil.
func parseOptionalID(raw string, bitSize int) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, bitSize)
	if err != nil || v <= 0 {
		return nil, strconv.ErrSyntax
	}
	return &v, nil
}
