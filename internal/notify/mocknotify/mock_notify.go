package mocknotify

import (
	"context"
	"sync"

	"dynasty-bot/internal/notify"

	"github.com/stretchr/testify/mock"
)

type Notifier struct {
	mock.Mock
}

func (n *Notifier) Notify(ctx context.Context, msg notify.Notification) error {
	args := n.Called(ctx, msg)
	return args.Error(0)
}

type RoleManager struct {
	mock.Mock
}

func (r *RoleManager) GrantHeadCoach(ctx context.Context, guildID, userID, roleName, roleID string) (string, error) {
	args := r.Called(ctx, guildID, userID, roleName, roleID)
	return args.String(0), args.Error(1)
}

func (r *RoleManager) RevokeHeadCoach(ctx context.Context, guildID, userID, roleName, roleID string) error {
	args := r.Called(ctx, guildID, userID, roleName, roleID)
	return args.Error(0)
}

// Recorder keeps every notification it receives, in order.
type Recorder struct {
	mu   sync.Mutex
	sent []notify.Notification
	Err  error
}

func (r *Recorder) Notify(_ context.Context, msg notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.Err
}

func (r *Recorder) Sent() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.sent...)
}

func (r *Recorder) OfKind(kind notify.Kind) []notify.Notification {
	var out []notify.Notification
	for _, n := range r.Sent() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
