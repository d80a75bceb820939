package postgres

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/adapters/out/postgres/outboxrepo"

	"github.com/lib/pq"
)

const (
	listenerMinReconnect = 10 * time.Second
	listenerMaxReconnect = time.Minute
	listenerPingInterval = 90 * time.Second
)

// OutboxListener turns Postgres NOTIFY messages on the outbox channel into
// wake-up signals for the relay. Bursts collapse into a single pending signal.
type OutboxListener struct {
	listener *pq.Listener
	wake     chan struct{}
	logger   *slog.Logger
}

// NewOutboxListener connects with its own session (LISTEN needs a dedicated
// connection) and subscribes to outboxrepo.NotifyChannel.
func NewOutboxListener(dsn string, logger *slog.Logger) (*OutboxListener, error) {
	logger = logger.With("component", "outbox_listener")

	l := pq.NewListener(dsn, listenerMinReconnect, listenerMaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			switch {
			case err != nil:
				logger.Warn("listener connection event", "event", int(ev), "error", err)
			case ev == pq.ListenerEventReconnected:
				logger.Info("listener reconnected")
			}
		},
	)
	if err := l.Listen(outboxrepo.NotifyChannel); err != nil {
		_ = l.Close()
		return nil, err
	}

	return &OutboxListener{
		listener: l,
		wake:     make(chan struct{}, 1),
		logger:   logger,
	}, nil
}

// Wake delivers a value whenever new outbox messages may be available.
func (l *OutboxListener) Wake() <-chan struct{} {
	return l.wake
}

// Run forwards notifications until ctx is done. After a reconnect pq sends a
// nil notification; it is forwarded too, since messages may have been missed.
func (l *OutboxListener) Run(ctx context.Context) {
	ticker := time.NewTicker(listenerPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-l.listener.Notify:
			if !ok {
				return
			}
			l.signal()
		case <-ticker.C:
			if err := l.listener.Ping(); err != nil {
				l.logger.WarnContext(ctx, "listener ping failed", "error", err)
			}
		}
	}
}

// Close stops listening and releases the connection.
func (l *OutboxListener) Close() error {
	return l.listener.Close()
}

func (l *OutboxListener) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
