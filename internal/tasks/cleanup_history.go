package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/history"
)

// HistoryPruner deletes history older than a retention window.
type HistoryPruner interface {
	Prune(ctx context.Context, retention time.Duration) (history.PruneResult, error)
}

// CleanupHistoryTask removes sync runs and audit events older than the retention period.
type CleanupHistoryTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for history cleanup tasks.
func (t CleanupHistoryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_history",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupHistoryProcessor creates a processor function for CleanupHistoryTask.
func CleanupHistoryProcessor(pruner HistoryPruner, logger *zap.Logger) backlite.QueueProcessor[CleanupHistoryTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task CleanupHistoryTask) error {
		if pruner == nil {
			return fmt.Errorf("history pruner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 30
		}
		retention := time.Duration(retentionDays) * 24 * time.Hour

		result, err := pruner.Prune(ctx, retention)
		if err != nil {
			return fmt.Errorf("cleanup history: %w", err)
		}

		logger.Info("Cleaned up history",
			zap.Int64("runs", result.Runs),
			zap.Int64("events", result.Events),
			zap.Int("retention_days", retentionDays))
		return nil
	}
}

// NewCleanupHistoryQueue creates a backlite queue for history cleanup tasks.
func NewCleanupHistoryQueue(pruner HistoryPruner, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupHistoryProcessor(pruner, logger))
}
