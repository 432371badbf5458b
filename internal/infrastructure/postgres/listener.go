package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// UserChangeChannel is the NOTIFY channel fired by the users table trigger on
// every insert, update and delete.
const UserChangeChannel = "users_changed"

// Listener exposes the store's change-notification feed. It holds a dedicated
// connection on LISTEN and invokes the callback once per notification.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
	logger  *logrus.Logger
}

func NewListener(pool *pgxpool.Pool, channel string, logger *logrus.Logger) *Listener {
	return &Listener{pool: pool, channel: channel, logger: logger}
}

// Run blocks until ctx is cancelled. Connection failures are logged and
// retried; notifications are best-effort, never a source of truth.
func (l *Listener) Run(ctx context.Context, onNotify func()) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := l.listen(ctx, onNotify); err != nil && ctx.Err() == nil {
			l.logger.WithError(err).WithField("channel", l.channel).Warn("change feed interrupted, reconnecting")
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				return
			}
		}
	}
}

func (l *Listener) listen(ctx context.Context, onNotify func()) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+l.channel); err != nil {
		return err
	}
	for {
		if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
			return err
		}
		onNotify()
	}
}
