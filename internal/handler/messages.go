package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	appErrors "github.com/yuzutyaso/chatsite/pkg/errors"
)

// maxAttachmentBytes caps one upload body.
const maxAttachmentBytes = 25 << 20

type sendMessageRequest struct {
	Text          string `json:"text"`
	AttachmentURL string `json:"attachment_url"`
}

// SendMessage handles POST /rooms/{room}/messages. The response carries no
// message body: the authoritative copy reaches every open view, including
// the sender's, through the change feed.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	roomID := mux.Vars(r)["room"]

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, appErrors.InvalidArg("invalid request body"))
		return
	}

	if err := h.Chat.Send(r.Context(), roomID, s.UserID, req.Text, req.AttachmentURL); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusAccepted, nil)
}

// GetMessages handles GET /rooms/{room}/messages: the bulk read the
// presentation layer issues when opening a conversation.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room"]

	msgs, err := h.Messages.ListRecent(r.Context(), roomID, h.Config.Chat.RetentionBound)
	if err != nil {
		h.Logger.Error("history read failed", "room_id", roomID, "err", err)
		h.respondError(w, appErrors.ErrBulkReadFailed(err))
		return
	}
	h.respondJSON(w, http.StatusOK, msgs)
}

// UploadAttachment handles POST /rooms/{room}/attachments; the body is the
// raw payload, the filename travels in a query parameter.
func (h *Handler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	roomID := mux.Vars(r)["room"]
	name := r.URL.Query().Get("name")

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxAttachmentBytes))
	if err != nil {
		h.respondError(w, appErrors.InvalidArg("unreadable request body"))
		return
	}

	url, err := h.Uploader.Upload(r.Context(), roomID, s.UserID, payload, name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, map[string]string{"attachment_url": url})
}
