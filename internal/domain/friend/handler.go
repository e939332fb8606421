package friend

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zipmap/zip-api/internal/middleware"
	"github.com/zipmap/zip-api/internal/pkg/errorhandler"
	"github.com/zipmap/zip-api/internal/pkg/response"
	"github.com/zipmap/zip-api/internal/pkg/validator"
)

// Handler handles relationship HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates relationship handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListFriends handles GET /friends
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	friends, err := h.service.ListFriends(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, friends)
}

// RemoveFriend handles DELETE /friends/{id}
func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveFriend(r.Context(), middleware.GetUserID(r.Context()), targetID); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// SendRequest handles POST /friend-requests
func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	var req SendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errors := validator.Validate(&req); errors != nil {
		response.ValidationError(w, errors)
		return
	}

	created, err := h.service.SendFriendRequest(r.Context(), middleware.GetUserID(r.Context()), req.TargetID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, FriendRequestFromEntity(created))
}

// AcceptRequest handles POST /friend-requests/{id}/accept where id is the requester
func (h *Handler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.AcceptFriendRequest(r.Context(), middleware.GetUserID(r.Context()), requesterID); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, map[string]string{"status": "accepted"})
}

// ListIncoming handles GET /friend-requests/incoming
func (h *Handler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListIncomingRequests(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, requestsResponse(requests))
}

// ListOutgoing handles GET /friend-requests/outgoing
func (h *Handler) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListOutgoingRequests(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, requestsResponse(requests))
}

// BlockUser handles POST /blocks/{id}
func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	block, err := h.service.BlockUser(r.Context(), middleware.GetUserID(r.Context()), targetID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, BlockRelationFromEntity(block))
}

// UnblockUser handles DELETE /blocks/{id}
func (h *Handler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.UnblockUser(r.Context(), middleware.GetUserID(r.Context()), targetID); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// ListBlocked handles GET /blocks
func (h *Handler) ListBlocked(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.service.ListBlocked(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]*BlockedUserResponse, 0, len(blocks))
	for _, block := range blocks {
		items = append(items, BlockRelationFromEntity(block))
	}
	response.OK(w, items)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, ErrSelfReference):
		errorhandler.HandleError(ctx, w, http.StatusBadRequest, "SELF_REFERENCE", "You cannot target yourself", err)
	case errors.Is(err, ErrUserNotFound):
		errorhandler.HandleError(ctx, w, http.StatusNotFound, "USER_NOT_FOUND", "User not found", err)
	case errors.Is(err, ErrRequestNotFound):
		errorhandler.HandleError(ctx, w, http.StatusNotFound, "REQUEST_NOT_FOUND", "Friend request not found", err)
	case errors.Is(err, ErrNotFriends):
		errorhandler.HandleError(ctx, w, http.StatusNotFound, "NOT_FRIENDS", "User is not in your friend list", err)
	case errors.Is(err, ErrNotBlocked):
		errorhandler.HandleError(ctx, w, http.StatusNotFound, "NOT_BLOCKED", "User is not blocked", err)
	case errors.Is(err, ErrAlreadyFriends):
		errorhandler.HandleError(ctx, w, http.StatusConflict, "ALREADY_FRIENDS", "Already friends", err)
	case errors.Is(err, ErrDuplicateRequest):
		errorhandler.HandleError(ctx, w, http.StatusConflict, "DUPLICATE_REQUEST", "Friend request already sent", err)
	case errors.Is(err, ErrAlreadyBlocked):
		errorhandler.HandleError(ctx, w, http.StatusConflict, "ALREADY_BLOCKED", "User already blocked", err)
	default:
		errorhandler.Internal(ctx, w, err)
	}
}

func pathUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil || strings.TrimSpace(id) == "" {
		response.BadRequest(w, "Invalid user ID")
		return "", false
	}
	return id, true
}

func requestsResponse(requests []*FriendRequest) []*FriendRequestResponse {
	items := make([]*FriendRequestResponse, 0, len(requests))
	for _, req := range requests {
		items = append(items, FriendRequestFromEntity(req))
	}
	return items
}
