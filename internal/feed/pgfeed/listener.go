// Package pgfeed implements the change feed over Postgres LISTEN/NOTIFY.
package pgfeed

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	model "github.com/yuzutyaso/chatsite/internal/chat/model"
	"github.com/yuzutyaso/chatsite/internal/feed"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

// TriggerSQL installs the notification source. Applied by migrations (and
// by the repository test harness); the payload is the raw message row.
const TriggerSQL = `
CREATE OR REPLACE FUNCTION notify_message_created() RETURNS trigger AS $$
BEGIN
    PERFORM pg_notify('message_created', row_to_json(NEW)::text);
    RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS messages_notify_created ON messages;
CREATE TRIGGER messages_notify_created
    AFTER INSERT ON messages
    FOR EACH ROW EXECUTE FUNCTION notify_message_created();
`

type Listener struct {
	hub     *feed.Hub
	ln      *pgdriver.Listener
	channel string
	logger  *logger.Logger
}

func New(db *bun.DB, channel string, logger *logger.Logger) *Listener {
	return &Listener{
		hub:     feed.NewHub(logger),
		ln:      pgdriver.NewListener(db),
		channel: channel,
		logger:  logger,
	}
}

// Run consumes notifications until ctx is cancelled. Payloads that fail to
// decode are logged and skipped; they would poison the stream otherwise.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.ln.Listen(ctx, l.channel); err != nil {
		return errors.Wrap(err, "pgfeed.Run.Listen: ")
	}

	// The notification channel only closes once the listener itself is
	// closed; ctx alone cannot unblock the range below.
	go func() {
		<-ctx.Done()
		if err := l.ln.Close(); err != nil {
			l.logger.Warn("feed listener close failed", "err", err)
		}
	}()

	for notif := range l.ln.Channel() {
		var m model.Message
		if err := json.Unmarshal([]byte(notif.Payload), &m); err != nil {
			l.logger.Warn("undecodable feed payload", "channel", notif.Channel, "err", err)
			continue
		}
		l.hub.Publish(&m)
	}
	return ctx.Err()
}

func (l *Listener) SubscribeMessages(ctx context.Context, roomID string) (feed.Subscription, error) {
	return l.hub.SubscribeMessages(ctx, roomID)
}
