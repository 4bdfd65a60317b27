package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/yuzutyaso/chatsite/config"
	"github.com/yuzutyaso/chatsite/internal/chat"
	"github.com/yuzutyaso/chatsite/internal/chat/sync"
	"github.com/yuzutyaso/chatsite/internal/friendship"
	"github.com/yuzutyaso/chatsite/internal/media"
	"github.com/yuzutyaso/chatsite/internal/profile"
	"github.com/yuzutyaso/chatsite/internal/session"
	appErrors "github.com/yuzutyaso/chatsite/pkg/errors"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

type ctxKey int

const sessionKey ctxKey = 0

// Handler holds application dependencies
type Handler struct {
	Config   config.Config
	Profiles profile.Usecase
	Friends  friendship.Usecase
	Chat     *sync.Syncer
	Messages chat.MessageRepository
	Uploader *media.Uploader
	Logger   *logger.Logger
}

// New creates a new Handler with the given dependencies
func New(cfg config.Config, profiles profile.Usecase, friends friendship.Usecase,
	chatSyncer *sync.Syncer, messages chat.MessageRepository, uploader *media.Uploader,
	logger *logger.Logger) *Handler {
	return &Handler{
		Config:   cfg,
		Profiles: profiles,
		Friends:  friends,
		Chat:     chatSyncer,
		Messages: messages,
		Uploader: uploader,
		Logger:   logger,
	}
}

// SetupRouter configures and returns the HTTP router
func (h *Handler) SetupRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/session", h.auth(h.EnsureProfile)).Methods("POST")
	r.HandleFunc("/profiles/search", h.auth(h.SearchProfile)).Methods("GET")

	r.HandleFunc("/friends", h.auth(h.AddFriend)).Methods("POST")
	r.HandleFunc("/friends", h.auth(h.ListFriends)).Methods("GET")

	r.HandleFunc("/rooms/{room}/messages", h.auth(h.SendMessage)).Methods("POST")
	r.HandleFunc("/rooms/{room}/messages", h.auth(h.GetMessages)).Methods("GET")
	r.HandleFunc("/rooms/{room}/attachments", h.auth(h.UploadAttachment)).Methods("POST")

	return r
}

// auth verifies the bearer token and threads the session through the
// request context; no ambient current-user state anywhere below this.
func (h *Handler) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			h.respondError(w, appErrors.ErrInvalidSession)
			return
		}
		s, err := session.ParseToken(token, h.Config.JWT.Secret)
		if err != nil {
			h.respondError(w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey, s)))
	}
}

func sessionFrom(r *http.Request) *session.Session {
	s, _ := r.Context().Value(sessionKey).(*session.Session)
	return s
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			h.Logger.Error("response encode failed", "err", err)
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch appErrors.CodeOf(err) {
	case appErrors.CodeInvalidArgument:
		status = http.StatusBadRequest
	case appErrors.CodeNotFound:
		status = http.StatusNotFound
	case appErrors.CodeAlreadyExists:
		status = http.StatusConflict
	case appErrors.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case appErrors.CodePermissionDenied:
		status = http.StatusForbidden
	case appErrors.CodeFailedPrecondition:
		status = http.StatusPreconditionFailed
	case appErrors.CodeUnavailable:
		status = http.StatusServiceUnavailable
	}
	h.respondJSON(w, status, map[string]string{"error": err.Error()})
}
