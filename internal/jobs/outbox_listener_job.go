package jobs

import (
	"context"
	"log/slog"
)

// Runner is a long-lived loop that returns when ctx is cancelled.
type Runner interface {
	Run(ctx context.Context)
}

// ListenerJob keeps a Runner such as the Postgres outbox listener alive for
// the lifetime of the job manager.
type ListenerJob struct {
	runner Runner
	cancel context.CancelFunc
	done   chan struct{}
	logger *slog.Logger
}

func NewListenerJob(runner Runner, logger *slog.Logger) *ListenerJob {
	return &ListenerJob{runner: runner, logger: logger.With("component", "outbox_listener_job")}
}

func (j *ListenerJob) Name() string {
	return "outbox listener"
}

func (j *ListenerJob) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	j.cancel = cancel
	j.done = make(chan struct{})

	go func() {
		defer close(j.done)
		j.runner.Run(ctx)
	}()

	j.logger.InfoContext(ctx, "Outbox listener started")
	return nil
}

func (j *ListenerJob) Stop() {
	if j.cancel == nil {
		return
	}
	j.cancel()
	<-j.done
	j.cancel = nil
	j.logger.InfoContext(context.Background(), "Outbox listener stopped")
}
