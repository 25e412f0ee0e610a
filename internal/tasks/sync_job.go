package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/coordinator"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

// SyncRunner runs one job to completion.
type SyncRunner interface {
	Run(ctx context.Context, job entities.SyncJobID, origin entities.SyncTrigger) (coordinator.Outcome, error)
}

// SyncJobTask runs one sync job outside a browser session (schedule, CLI, API).
type SyncJobTask struct {
	Job     entities.SyncJobID   `json:"job"`
	Trigger entities.SyncTrigger `json:"trigger"`
}

// Config returns the queue configuration for sync tasks.
// Failed syncs are never retried automatically.
func (t SyncJobTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sync_job",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SyncJobProcessor creates a processor function for SyncJobTask.
func SyncJobProcessor(runner SyncRunner, logger *zap.Logger) backlite.QueueProcessor[SyncJobTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task SyncJobTask) error {
		if runner == nil {
			return fmt.Errorf("sync runner not configured")
		}

		job, err := entities.ParseSyncJobID(task.Job.String())
		if err != nil {
			return err
		}
		trigger := task.Trigger
		if trigger == "" {
			trigger = entities.SyncTriggerSchedule
		}

		out, err := runner.Run(ctx, job, trigger)
		if err != nil {
			logger.Info("Queued sync skipped", zap.String("job", job.String()), zap.Error(err))
			return fmt.Errorf("sync %s: %w", job, err)
		}
		if !out.Succeeded() {
			return fmt.Errorf("sync %s: %w", job, out.Err)
		}

		logger.Info("Queued sync finished",
			zap.String("job", job.String()),
			zap.String("run_id", out.RunID),
			zap.Duration("duration", out.Duration()))
		return nil
	}
}

// NewSyncJobQueue creates a backlite queue for sync tasks.
func NewSyncJobQueue(runner SyncRunner, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(SyncJobProcessor(runner, logger))
}
