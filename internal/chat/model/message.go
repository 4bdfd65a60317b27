package model

import (
	"time"

	profile "github.com/yuzutyaso/chatsite/internal/profile/model"
)

// Message is immutable once created. The server assigns ID and CreatedAt;
// (CreatedAt, ID) is the authoritative ordering key for a conversation,
// regardless of delivery order.
type Message struct {
	ID     string `bun:",pk,default:gen_random_uuid()" json:"id"`
	RoomID string `bun:",notnull" json:"room_id"`

	AuthorID string           `bun:",notnull" json:"author_id"`
	Author   *profile.Profile `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`

	// At least one of Text / AttachmentURL is set.
	Text          string `bun:",nullzero" json:"text,omitempty"`
	AttachmentURL string `bun:",nullzero" json:"attachment_url,omitempty"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// OrderedBefore reports whether m sorts before other by (CreatedAt, ID).
func (m *Message) OrderedBefore(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}
