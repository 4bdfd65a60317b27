package sync

import (
	"sort"

	model "github.com/yuzutyaso/chatsite/internal/chat/model"
)

// timeline is the bounded, ordered, duplicate-free in-memory view of one
// conversation. Not safe for concurrent use; the owning Conversation
// serializes all mutation.
type timeline struct {
	bound int
	ids   map[string]struct{}
	msgs  []*model.Message
}

func newTimeline(bound int) *timeline {
	return &timeline{
		bound: bound,
		ids:   make(map[string]struct{}),
	}
}

// insert places m at its (CreatedAt, ID) position. A duplicate id is a
// no-op, which makes the merge idempotent and commutative under the
// at-least-once, possibly reordered feed. Overflow evicts oldest-first.
func (t *timeline) insert(m *model.Message) bool {
	if _, dup := t.ids[m.ID]; dup {
		return false
	}

	i := sort.Search(len(t.msgs), func(i int) bool {
		return m.OrderedBefore(t.msgs[i])
	})
	t.msgs = append(t.msgs, nil)
	copy(t.msgs[i+1:], t.msgs[i:])
	t.msgs[i] = m
	t.ids[m.ID] = struct{}{}

	for len(t.msgs) > t.bound {
		evicted := t.msgs[0]
		t.msgs = t.msgs[1:]
		delete(t.ids, evicted.ID)
	}
	return true
}

func (t *timeline) len() int { return len(t.msgs) }

func (t *timeline) snapshot() []*model.Message {
	out := make([]*model.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}
