// Package sync owns the authoritative in-memory view of open
// conversations: it reconciles the initial bulk read with the live change
// feed into one ordered, bounded, duplicate-free timeline per room.
package sync

import (
	"context"
	stderrors "errors"
	"strings"
	gosync "sync"

	"github.com/yuzutyaso/chatsite/internal/chat"
	model "github.com/yuzutyaso/chatsite/internal/chat/model"
	"github.com/yuzutyaso/chatsite/internal/feed"
	"github.com/yuzutyaso/chatsite/internal/profile"
	profilemodel "github.com/yuzutyaso/chatsite/internal/profile/model"
	"github.com/yuzutyaso/chatsite/pkg/errors"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

// UnknownAuthor marks a live message whose author profile could not be
// resolved. The message is kept; losing it would be worse than a missing
// display name.
const UnknownAuthor = "unknown"

type State int

const (
	StateLoading State = iota
	StateLive
	StateClosed
)

type Syncer struct {
	messages chat.MessageRepository
	profiles profile.Repository
	feed     feed.Feed
	bound    int
	logger   *logger.Logger
}

func NewSyncer(messages chat.MessageRepository, profiles profile.Repository, fd feed.Feed, bound int, logger *logger.Logger) *Syncer {
	if bound <= 0 {
		bound = 200
	}
	return &Syncer{
		messages: messages,
		profiles: profiles,
		feed:     fd,
		bound:    bound,
		logger:   logger,
	}
}

// Open starts a fresh Loading -> Live cycle for roomID. The feed
// subscription is taken out before the bulk read so events arriving during
// the read are buffered, not lost; they merge in once the history lands.
func (s *Syncer) Open(ctx context.Context, roomID string) (*Conversation, error) {
	cctx, cancel := context.WithCancel(ctx)

	sub, err := s.feed.SubscribeMessages(cctx, roomID)
	if err != nil {
		cancel()
		return nil, errors.Wrap(errors.CodeUnavailable, "feed subscription failed", err)
	}

	c := &Conversation{
		roomID:   roomID,
		syncer:   s,
		state:    StateLoading,
		timeline: newTimeline(s.bound),
		sub:      sub,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go c.pump(cctx)

	history, err := s.messages.ListRecent(cctx, roomID, s.bound)
	if err != nil {
		c.Close()
		return nil, errors.ErrBulkReadFailed(err)
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil, errors.ErrConversationClosed
	}
	for _, m := range history {
		c.timeline.insert(m)
	}
	for _, m := range c.buffered {
		c.timeline.insert(m)
	}
	c.buffered = nil
	c.state = StateLive
	c.mu.Unlock()

	return c, nil
}

// Send validates and writes a message without touching any local view; the
// authoritative copy arrives through the feed, so the sender observes the
// same ordering and dedup discipline as everyone else. A store rejection is
// surfaced and never retried here (no idempotency key exists for sends).
func (s *Syncer) Send(ctx context.Context, roomID, authorID, text, attachmentURL string) error {
	if strings.TrimSpace(text) == "" && attachmentURL == "" {
		return errors.ErrEmptyMessage
	}
	m := &model.Message{
		RoomID:        roomID,
		AuthorID:      authorID,
		Text:          text,
		AttachmentURL: attachmentURL,
	}
	if err := s.messages.Create(ctx, m); err != nil {
		if stderrors.Is(err, chat.ErrRejected) {
			return errors.ErrSendRejected
		}
		return errors.ErrSendFailed(err)
	}
	return nil
}

// resolveAuthor fills in the joined profile when the feed payload omits it.
// Failures downgrade to the unknown-author marker instead of dropping the
// message.
func (s *Syncer) resolveAuthor(ctx context.Context, m *model.Message) {
	if m.Author != nil {
		return
	}
	p, err := s.profiles.GetByID(ctx, m.AuthorID)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("author profile unresolved, keeping message",
				"message_id", m.ID, "author_id", m.AuthorID, "err", err)
		}
		m.Author = &profilemodel.Profile{ID: m.AuthorID, Name: UnknownAuthor}
		return
	}
	m.Author = p
}

// Conversation is the handle for one open room. All timeline mutation goes
// through mu; multiple conversations are fully independent.
type Conversation struct {
	roomID string
	syncer *Syncer

	sub    feed.Subscription
	cancel context.CancelFunc
	done   chan struct{}

	mu       gosync.Mutex
	state    State
	timeline *timeline
	buffered []*model.Message
}

func (c *Conversation) RoomID() string { return c.roomID }

func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns the current view, ordered by (CreatedAt, ID).
func (c *Conversation) Messages() []*model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeline.snapshot()
}

func (c *Conversation) Send(ctx context.Context, authorID, text, attachmentURL string) error {
	c.mu.Lock()
	closed := c.state == StateClosed
	c.mu.Unlock()
	if closed {
		return errors.ErrConversationClosed
	}
	return c.syncer.Send(ctx, c.roomID, authorID, text, attachmentURL)
}

// Close releases the subscription and stops all merging. Idempotent.
// Reopening the room starts from scratch with no memory of this view.
func (c *Conversation) Close() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.state = StateClosed
	c.buffered = nil
	c.mu.Unlock()

	c.cancel()
	c.sub.Close()
}

// Done is closed once the event pump has exited.
func (c *Conversation) Done() <-chan struct{} { return c.done }

func (c *Conversation) pump(ctx context.Context) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.sub.Events():
			if !ok {
				return
			}
			m := ev.Message
			if m == nil || m.RoomID != c.roomID {
				continue
			}
			// Profile lookup is I/O; keep it outside the view lock.
			c.syncer.resolveAuthor(ctx, m)
			c.deliver(m)
		}
	}
}

func (c *Conversation) deliver(m *model.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateLoading:
		// The bulk read may stall; the buffer holds at most the retention
		// bound, dropping oldest, so Loading stays within the same memory
		// envelope as the live view.
		c.buffered = append(c.buffered, m)
		if n := len(c.buffered) - c.syncer.bound; n > 0 {
			c.buffered = c.buffered[n:]
		}
	case StateLive:
		c.timeline.insert(m)
	case StateClosed:
		// No late merges after Close.
	}
}
