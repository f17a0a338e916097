package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/eventhub/internal/gateway"
)

var (
	profileFields    = []string{"id", "username", "full_name", "last_seen"}
	friendshipFields = []string{"user_id", "friend_id", "status", "created_at", "full_name"}
)

type socialBackend interface {
	gateway.Profiles
	gateway.Friendships
	gateway.Settings
}

// SocialHandler serves profiles, friendships and user settings.
type SocialHandler struct {
	backend   socialBackend
	responder responder
	logger    *slog.Logger
}

// NewSocialHandler constructs a SocialHandler.
func NewSocialHandler(backend socialBackend, logger *slog.Logger) *SocialHandler {
	base := defaultLogger(logger)
	return &SocialHandler{backend: backend, responder: newResponder(base), logger: base}
}

func (h *SocialHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "SocialHandler", operation, attrs...)
}

// ListProfiles handles GET /profiles.
func (h *SocialHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	q, ok := decodeQuery(h.responder, w, r, profileFields)
	if !ok {
		return
	}
	profiles, err := h.backend.ListProfiles(r.Context(), q)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, profiles)
}

// ListFriendships handles GET /friendships?side=friend|requester. The query
// must pin user_id or friend_id to the caller.
func (h *SocialHandler) ListFriendships(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q, ok := decodeQuery(h.responder, w, r, friendshipFields)
	if !ok {
		return
	}
	principal, _ := PrincipalFromContext(ctx)
	userID, byUser := q.Value("user_id")
	friendID, byFriend := q.Value("friend_id")
	if !(byUser && userID == principal.ID) && !(byFriend && friendID == principal.ID) {
		h.responder.handleServiceError(ctx, w, gateway.ErrForbidden)
		return
	}

	friendships, err := h.backend.ListFriendships(ctx, q, gateway.Side(r.URL.Query().Get("side")))
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, friendships)
}

// CreateFriendship handles POST /friendships. The caller is always the
// requesting side.
func (h *SocialHandler) CreateFriendship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	var friendship gateway.Friendship
	if err := decodeJSON(w, r, &friendship); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	friendship.UserID = principal.ID

	if err := h.backend.CreateFriendship(ctx, friendship); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "CreateFriendship", "friend_id", friendship.FriendID).InfoContext(ctx, "friendship created", "status", friendship.Status)
	h.responder.writeJSON(ctx, w, http.StatusCreated, friendship)
}

type friendshipStatusRequest struct {
	UserID   string `json:"user_id"`
	FriendID string `json:"friend_id"`
	Status   string `json:"status"`
}

// UpdateFriendship handles PATCH /friendships.
func (h *SocialHandler) UpdateFriendship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req friendshipStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if !involvesCaller(ctx, req.UserID, req.FriendID) {
		h.responder.handleServiceError(ctx, w, gateway.ErrForbidden)
		return
	}
	if err := h.backend.UpdateFriendship(ctx, req.UserID, req.FriendID, req.Status); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "UpdateFriendship", "user_id", req.UserID, "friend_id", req.FriendID).InfoContext(ctx, "friendship updated", "status", req.Status)
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// DeleteFriendship handles DELETE /friendships?user_id=&friend_id=.
func (h *SocialHandler) DeleteFriendship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.URL.Query().Get("user_id")
	friendID := r.URL.Query().Get("friend_id")
	if !involvesCaller(ctx, userID, friendID) {
		h.responder.handleServiceError(ctx, w, gateway.ErrForbidden)
		return
	}
	if err := h.backend.DeleteFriendship(ctx, userID, friendID); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

func involvesCaller(ctx context.Context, userID, friendID string) bool {
	principal, ok := PrincipalFromContext(ctx)
	return ok && principal.ID != "" && (principal.ID == userID || principal.ID == friendID)
}

// GetSettings handles GET /settings.
func (h *SocialHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())
	settings, err := h.backend.GetSettings(r.Context(), principal.ID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, settings)
}

// SaveSettings handles PUT /settings.
func (h *SocialHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)

	var settings gateway.UserSettings
	if err := decodeJSON(w, r, &settings); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	settings.UserID = principal.ID

	if err := h.backend.SaveSettings(ctx, settings); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	stored, err := h.backend.GetSettings(ctx, principal.ID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.log(ctx, "SaveSettings").InfoContext(ctx, "settings saved")
	h.responder.writeJSON(ctx, w, http.StatusOK, stored)
}
