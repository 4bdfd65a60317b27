package session

import (
	"context"

	"github.com/yuzutyaso/chatsite/internal/profile"
	"github.com/yuzutyaso/chatsite/pkg/logger"
)

// Manager drives profile provisioning from session-changed events instead
// of view lifecycle: every sign-in notification triggers one idempotent
// EnsureProfile call.
type Manager struct {
	profiles profile.Usecase
	logger   *logger.Logger
}

func NewManager(profiles profile.Usecase, logger *logger.Logger) *Manager {
	return &Manager{profiles: profiles, logger: logger}
}

// Run consumes session-changed events until ctx is cancelled or the
// channel closes. Provisioning failures are logged and retried on the next
// event; they never tear the loop down.
func (m *Manager) Run(ctx context.Context, changes <-chan Session) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-changes:
			if !ok {
				return
			}
			if s.UserID == "" {
				// Signed out; nothing to provision.
				continue
			}
			if _, err := m.profiles.EnsureProfile(ctx, s.UserID, s.Email); err != nil {
				m.logger.Error("provisioning on session change failed",
					"user_id", s.UserID, "err", err)
			}
		}
	}
}
