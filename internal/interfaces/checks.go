package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/pawsitivecheck/syncconsole/internal/adminapi"
	"github.com/pawsitivecheck/syncconsole/internal/audit"
	"github.com/pawsitivecheck/syncconsole/internal/auth"
	"github.com/pawsitivecheck/syncconsole/internal/coordinator"
	"github.com/pawsitivecheck/syncconsole/internal/database"
	"github.com/pawsitivecheck/syncconsole/internal/history"
	"github.com/pawsitivecheck/syncconsole/internal/http"
	"github.com/pawsitivecheck/syncconsole/internal/scheduler"
	"github.com/pawsitivecheck/syncconsole/internal/statuscache"
	"github.com/pawsitivecheck/syncconsole/internal/tasks"
	"github.com/pawsitivecheck/syncconsole/internal/telemetry"
)

// =============================================================================
// Admin API
// =============================================================================

var _ coordinator.Syncer = (*adminapi.Client)(nil)
var _ statuscache.Fetcher = (*adminapi.Client)(nil)

// =============================================================================
// Coordination
// =============================================================================

var _ coordinator.StatusInvalidator = (*statuscache.Cache)(nil)
var _ coordinator.RunRecorder = (*history.Service)(nil)
var _ coordinator.Metrics = (*telemetry.SyncMetrics)(nil)
var _ statuscache.Metrics = (*telemetry.SyncMetrics)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.SyncRunner = (*coordinator.Coordinator)(nil)
var _ tasks.HistoryPruner = (*history.Service)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ scheduler.Sweeper = (*coordinator.Registry)(nil)

// =============================================================================
// HTTP Layer
// =============================================================================

var _ http.StatusSource = (*statuscache.Cache)(nil)
var _ http.HistoryReader = (*history.Service)(nil)
var _ http.AuditStore = (*audit.Service)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.ScheduleLister = (*scheduler.SyncScheduler)(nil)
var _ http.HealthChecker = (*database.Database)(nil)
var _ auth.AuthAuditor = (*audit.Service)(nil)
