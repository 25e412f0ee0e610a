package audit

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/database/audit"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo   *audit.Repository
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger.Named("audit")}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			s.logger.Error("Failed to log audit event", zap.String("action", event.Action), zap.Error(err))
		}
	}()
}

// Flush waits for pending asynchronous writes.
func (s *Service) Flush() {
	s.wg.Wait()
}

// LogSyncRun records a settled sync job. The history row ID links the two.
func (s *Service) LogSyncRun(userID uint, run *entities.SyncRun) error {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventSync,
		Action:      "sync_" + run.Job.String(),
		Description: run.Message,
		EntityType:  "sync_run",
		Status:      entities.AuditStatusSuccess,
	}
	if run.ID != 0 {
		id := run.ID
		event.EntityID = &id
	}

	metadata := map[string]any{
		"run_id":      run.RunID,
		"trigger":     run.Trigger,
		"duration_ms": run.DurationMs,
	}
	if run.SyncedCount != nil {
		metadata["synced_count"] = *run.SyncedCount
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if run.Status == entities.SyncRunFailed {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(run.Error, 500)
	}

	return s.Log(event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(event)
}

// LogAdmin records an administrative action such as a manual status refresh or cleanup.
func (s *Service) LogAdmin(userID uint, action, description string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAdmin,
		Action:      action,
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(filter audit.Filter) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(filter)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
