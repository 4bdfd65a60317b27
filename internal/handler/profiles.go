package handler

import (
	"net/http"

	"github.com/yuzutyaso/chatsite/internal/profile"
)

// EnsureProfile handles POST /session: idempotent provisioning driven by
// the sign-in event, not by view rendering.
func (h *Handler) EnsureProfile(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)

	p, err := h.Profiles.EnsureProfile(r.Context(), s.UserID, s.Email)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, profile.ToDTO(p))
}

// SearchProfile handles GET /profiles/search?short_id=...
func (h *Handler) SearchProfile(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	shortID := r.URL.Query().Get("short_id")

	p, err := h.Friends.Search(r.Context(), s.UserID, shortID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if p == nil {
		// A miss is an empty result, not an error.
		h.respondJSON(w, http.StatusOK, []*profile.ProfileDTO{})
		return
	}
	h.respondJSON(w, http.StatusOK, []*profile.ProfileDTO{profile.ToDTO(p)})
}
