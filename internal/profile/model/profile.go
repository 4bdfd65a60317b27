package model

import (
	"time"
)

// Profile is the durable identity record, one row per authentication
// provider uid. ShortID is the public 7-char handle used for friend
// discovery; it is assigned once at provisioning and never rewritten.
//
// Uniqueness of short_id is enforced by a partial unique index that
// excludes the unassigned sentinel, so anonymous sign-ups do not
// collide with each other:
//
//	CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_short_id
//	    ON profiles (short_id) WHERE short_id <> '0000000';
type Profile struct {
	// Opaque uid assigned by the authentication provider.
	ID string `bun:",pk" json:"id"`

	Name      string `bun:",nullzero" json:"name,omitempty"`
	AvatarURL string `bun:",nullzero" json:"avatar_url,omitempty"`

	ShortID string `bun:",notnull" json:"short_id"`

	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
}
