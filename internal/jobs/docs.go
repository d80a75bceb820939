// Package jobs provides background tasks for the order workflow service.
//
// # Available Jobs
//
// 1. OutboxRelayJob - publishes committed StatusChanged events from the outbox
// 2. ListenerJob - keeps the Postgres LISTEN connection that wakes the relay
//
// # Usage
//
//	wake := listener.Wake()
//	relay := jobs.NewOutboxRelayJob(dispatchHandler, cmd, cfg.RelaySchedule, wake, logger)
//	jobManager := jobs.NewJobManager(jobs.NewListenerJob(listener, logger), relay)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Scheduling
//
// The relay uses a seconds-resolution cron expression, "*/5 * * * * *" by
// default. The schedule is the safety net; in normal operation the relay is
// woken by NOTIFY within milliseconds of a commit.
//
// # Error Handling
//
// - Storage errors abort the pass and are logged; the next tick retries
// - Per-message delivery failures are counted in the outbox and retried until the attempt limit
package jobs
