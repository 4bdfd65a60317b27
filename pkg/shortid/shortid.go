// Package shortid derives the 7-character public handle users search each
// other by. The handle is a one-way hash of a private seed (normally the
// account email), so the seed is never exposed.
package shortid

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

const Length = 7

// Unassigned is returned for an empty seed (anonymous sign-up). Search must
// treat it as "no handle yet": it never matches a profile.
const Unassigned = "0000000"

// Derive hashes seed with SHA-256 and keeps the first Length hex characters.
// Deterministic, not globally unique — collision fallback is the caller's job
// (see profile provisioning).
func Derive(seed string) string {
	if seed == "" {
		return Unassigned
	}
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])[:Length]
}

// Perturb returns the seed to hash for a given retry attempt. Attempt 0 is
// the seed itself, so first-time derivation stays stable across processes.
func Perturb(seed string, attempt int) string {
	if attempt <= 0 || seed == "" {
		return seed
	}
	return seed + "#" + strconv.Itoa(attempt)
}
