package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	auditrepo "github.com/pawsitivecheck/syncconsole/internal/database/audit"
	"github.com/pawsitivecheck/syncconsole/internal/database/syncruns"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
	"github.com/pawsitivecheck/syncconsole/internal/scheduler"
	"github.com/pawsitivecheck/syncconsole/internal/statuscache"
)

// StatusSource exposes the cached upstream sync status.
type StatusSource interface {
	Snapshot() statuscache.Snapshot
	Refresh(ctx context.Context) error
	Interval() time.Duration
}

// HistoryReader lists settled sync runs.
type HistoryReader interface {
	List(ctx context.Context, filter syncruns.Filter) ([]entities.SyncRun, int64, error)
	Latest(ctx context.Context) (map[entities.SyncJobID]entities.SyncRun, error)
}

// AuditStore records and lists administrative events.
type AuditStore interface {
	LogAdmin(userID uint, action, description string, err error)
	GetEvents(filter auditrepo.Filter) ([]entities.AuditEvent, int64, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// ScheduleLister reports the registered cron schedules.
type ScheduleLister interface {
	Entries() []scheduler.Entry
}

// HealthChecker verifies database connectivity.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
