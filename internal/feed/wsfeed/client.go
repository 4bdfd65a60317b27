// Package wsfeed implements the change feed as a websocket client against
// a managed realtime endpoint that relays row-level changes.
package wsfeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	model "github.com/yuzutyaso/chatsite/internal/chat/model"
	"github.com/yuzutyaso/chatsite/internal/feed"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

const reconnectDelay = 3 * time.Second

// envelope is the wire shape of one change notification.
type envelope struct {
	Table  string          `json:"table"`
	Type   string          `json:"type"`
	Record json.RawMessage `json:"record"`
}

type Client struct {
	hub    *feed.Hub
	url    string
	logger *logger.Logger
}

func New(url string, logger *logger.Logger) *Client {
	return &Client{hub: feed.NewHub(logger), url: url, logger: logger}
}

// Run keeps a connection to the realtime endpoint until ctx is cancelled,
// redialing after failures. Missed events during a gap are reconciled by
// the conversation merge on reopen.
func (c *Client) Run(ctx context.Context) error {
	for {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("realtime dial failed, retrying", "url", c.url, "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(reconnectDelay):
			}
			continue
		}

		c.read(ctx, conn)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *Client) read(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// Closing the conn is the only way to unblock ReadJSON on cancel.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		var env envelope
		if err := conn.ReadJSON(&env); err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("realtime connection lost", "err", err)
			}
			return
		}
		if env.Table != "messages" || env.Type != "INSERT" {
			continue
		}
		var m model.Message
		if err := json.Unmarshal(env.Record, &m); err != nil {
			c.logger.Warn("undecodable realtime record", "err", err)
			continue
		}
		c.hub.Publish(&m)
	}
}

func (c *Client) SubscribeMessages(ctx context.Context, roomID string) (feed.Subscription, error) {
	return c.hub.SubscribeMessages(ctx, roomID)
}
