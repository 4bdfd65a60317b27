package chat

// roomIDSeparator never appears inside a provider uid, so distinct pairs
// can never concatenate to the same room id.
const roomIDSeparator = ":"

// RoomID maps an unordered pair of user ids to the canonical conversation
// identifier. Commutative and total; a == b (self chat) is well-defined.
// This is the single source of truth for conversation identity.
func RoomID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + roomIDSeparator + b
}
