package feed

import (
	"context"
	"sync"

	model "github.com/yuzutyaso/chatsite/internal/chat/model"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

// subBuffer absorbs delivery bursts per subscriber. A full buffer drops the
// event with a warning rather than blocking delivery to other rooms; the
// upstream feed is at-least-once and the view re-converges on reopen.
const subBuffer = 256

// Hub fans incoming message events out to per-room subscribers. Both feed
// drivers publish into a Hub so subscription semantics stay identical.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[*hubSub]struct{}
	logger *logger.Logger
}

func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*hubSub]struct{}),
		logger: logger,
	}
}

// SubscribeMessages makes Hub itself a Feed; the drivers only add a
// transport-specific Run loop on top.
func (h *Hub) SubscribeMessages(ctx context.Context, roomID string) (Subscription, error) {
	s := &hubSub{hub: h, roomID: roomID, ch: make(chan MessageEvent, subBuffer)}

	h.mu.Lock()
	if h.subs[roomID] == nil {
		h.subs[roomID] = make(map[*hubSub]struct{})
	}
	h.subs[roomID][s] = struct{}{}
	h.mu.Unlock()

	// Teardown follows the context so a cancelled conversation never
	// receives late events.
	go func() {
		<-ctx.Done()
		s.Close()
	}()

	return s, nil
}

// Publish delivers the message to every subscriber of its room without
// blocking: a slow conversation cannot stall the feed for the others.
func (h *Hub) Publish(m *model.Message) {
	if m == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[m.RoomID] {
		select {
		case s.ch <- MessageEvent{Message: m}:
		default:
			h.logger.Warn("feed subscriber buffer full, dropping event",
				"room_id", m.RoomID, "message_id", m.ID)
		}
	}
}

func (h *Hub) remove(s *hubSub) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set := h.subs[s.roomID]; set != nil {
		delete(set, s)
		if len(set) == 0 {
			delete(h.subs, s.roomID)
		}
	}
	// Closing under the hub lock: Publish holds the same lock, so no send
	// can race the close.
	close(s.ch)
}

type hubSub struct {
	hub    *Hub
	roomID string
	ch     chan MessageEvent
	once   sync.Once
}

func (s *hubSub) Events() <-chan MessageEvent { return s.ch }

func (s *hubSub) Close() error {
	s.once.Do(func() { s.hub.remove(s) })
	return nil
}
