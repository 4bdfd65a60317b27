package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yuzutyaso/chatsite/internal/profile"
	appErrors "github.com/yuzutyaso/chatsite/pkg/errors"
)

type addFriendRequest struct {
	PeerID string `json:"peer_id"`
}

// AddFriend handles POST /friends
func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)

	var req addFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, appErrors.InvalidArg("invalid request body"))
		return
	}

	if err := h.Friends.AddFriend(r.Context(), s.UserID, req.PeerID); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, nil)
}

// ListFriends handles GET /friends
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)

	friends, err := h.Friends.ListFriends(r.Context(), s.UserID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	dtos := make([]*profile.ProfileDTO, 0, len(friends))
	for _, f := range friends {
		dtos = append(dtos, profile.ToDTO(f))
	}
	h.respondJSON(w, http.StatusOK, dtos)
}
