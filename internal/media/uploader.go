// Package media turns binary payloads into attachment references for the
// send path.
package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/yuzutyaso/chatsite/pkg/blob"
	"github.com/yuzutyaso/chatsite/pkg/errors"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

type Uploader struct {
	store  blob.Store
	logger *logger.Logger
}

func NewUploader(store blob.Store, logger *logger.Logger) *Uploader {
	return &Uploader{store: store, logger: logger}
}

// Upload stores the payload under a collision-resistant path scoped by room
// and author and returns the public reference. Failures are surfaced as-is;
// whether to still send a text-only message is the caller's call.
func (u *Uploader) Upload(ctx context.Context, roomID, authorID string, payload []byte, name string) (string, error) {
	if len(payload) == 0 {
		return "", errors.InvalidArg("attachment payload is empty")
	}

	contentType := mimetype.Detect(payload).String()
	path := fmt.Sprintf("%s/%s/%s-%s", roomID, authorID, uuid.NewString(), sanitizeName(name))

	if err := u.store.Put(ctx, path, payload, contentType); err != nil {
		u.logger.Error("attachment upload failed",
			"room_id", roomID, "author_id", authorID, "name", name, "err", err)
		return "", errors.ErrUploadFailed(err)
	}
	return u.store.PublicURL(path), nil
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "attachment"
	}
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "..", "_")
	return replacer.Replace(name)
}
