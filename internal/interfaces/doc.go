// Package interfaces documents the core abstractions used throughout the console.
//
// # Interface Categories
//
// ## Admin API
//
//   - Syncer: one POST per job (internal/coordinator/coordinator.go)
//   - Fetcher: the status snapshot (internal/statuscache/cache.go)
//
// Both are implemented by adminapi.Client.
//
// ## Coordination Hooks
//
//   - StatusInvalidator: refetch status after a successful job
//   - RunRecorder: persist settled runs to history and the audit log
//   - Metrics: run counters and durations
//
// ## Background Work
//
//   - SyncRunner: runs a queued job on the shared coordinator (internal/tasks/sync_job.go)
//   - HistoryPruner: retention cleanup (internal/tasks/cleanup_history.go)
//   - Enqueuer and Sweeper: used by the cron scheduler (internal/scheduler)
//
// ## HTTP Stores
//
//   - StatusSource, HistoryReader, AuditStore, TaskQueue, ScheduleLister and
//     HealthChecker (internal/http/stores.go)
//
// # Adding a New Sync Job
//
//  1. Add the identifier to entities.AllSyncJobs
//
//  2. Add its JobSpec to internal/coordinator/jobs.go with a label, endpoint,
//     success title and fixed failure message
//
// The dashboard, CLI and task queue pick it up from there.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
