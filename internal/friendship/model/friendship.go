package model

import (
	"time"

	profile "github.com/yuzutyaso/chatsite/internal/profile/model"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusBlocked  Status = "blocked"
)

// Friendship is one directional row of the symmetric relation. A true
// friendship between A and B is two rows, (A,B) and (B,A); the composite
// primary key turns duplicate inserts into no-ops so retries after a
// partial write are safe.
type Friendship struct {
	OwnerID string `bun:",pk" json:"owner_id"`
	PeerID  string `bun:",pk" json:"peer_id"`

	Peer *profile.Profile `bun:"rel:belongs-to,join:peer_id=id" json:"peer,omitempty"`

	Status Status `bun:",notnull,default:'accepted'" json:"status"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
}
