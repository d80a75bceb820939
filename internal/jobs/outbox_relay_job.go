package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"orderflow/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultRelaySchedule runs the relay every five seconds.
const DefaultRelaySchedule = "*/5 * * * * *"

// maxDrainRounds bounds how many full batches one run may dispatch before
// yielding to the next tick.
const maxDrainRounds = 20

type OutboxDispatcher interface {
	Handle(ctx context.Context, cmd commands.DispatchOutboxCommand) (commands.DispatchOutboxResult, error)
}

// OutboxRelayJob publishes committed outbox messages. It runs on a cron
// schedule and additionally whenever wake fires, which the Postgres listener
// signals on NOTIFY. Runs never overlap; a wake-up during a run is dropped
// because the running pass drains the backlog anyway.
type OutboxRelayJob struct {
	handler  OutboxDispatcher
	cmd      commands.DispatchOutboxCommand
	schedule string
	wake     <-chan struct{}
	timeout  time.Duration

	cron    *cron.Cron
	running sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	logger  *slog.Logger
}

func NewOutboxRelayJob(
	handler OutboxDispatcher,
	cmd commands.DispatchOutboxCommand,
	schedule string,
	wake <-chan struct{},
	logger *slog.Logger,
) *OutboxRelayJob {
	if schedule == "" {
		schedule = DefaultRelaySchedule
	}
	return &OutboxRelayJob{
		handler:  handler,
		cmd:      cmd,
		schedule: schedule,
		wake:     wake,
		timeout:  30 * time.Second,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "outbox_relay_job"),
	}
}

func (j *OutboxRelayJob) Name() string {
	return "outbox relay"
}

// Start schedules the relay and begins listening for wake-ups.
func (j *OutboxRelayJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.RunOnce); err != nil {
		return err
	}

	j.stop = make(chan struct{})
	j.done = make(chan struct{})
	go j.watch()

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started", "schedule", j.schedule)
	return nil
}

// Stop waits for a running pass to finish.
func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	if j.stop != nil {
		close(j.stop)
		<-j.done
		j.stop = nil
	}
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}

// RunOnce dispatches until the outbox has no full batch left. It returns
// immediately when another pass is in progress.
func (j *OutboxRelayJob) RunOnce() {
	if !j.running.TryLock() {
		return
	}
	defer j.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	for round := 0; round < maxDrainRounds; round++ {
		res, err := j.handler.Handle(ctx, j.cmd)
		if err != nil {
			j.logger.ErrorContext(ctx, "Outbox relay job failed", "error", err)
			return
		}
		if res.Failed > 0 {
			j.logger.WarnContext(ctx, "Outbox messages failed to dispatch",
				"dispatched", res.Dispatched, "failed", res.Failed)
		}
		if res.Dispatched+res.Failed < j.cmd.BatchSize() {
			return
		}
	}
}

func (j *OutboxRelayJob) watch() {
	defer close(j.done)
	if j.wake == nil {
		<-j.stop
		return
	}
	for {
		select {
		case <-j.stop:
			return
		case _, ok := <-j.wake:
			if !ok {
				<-j.stop
				return
			}
			j.RunOnce()
		}
	}
}
