// Package history persists settled sync runs and mirrors them into the audit log.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/audit"
	"github.com/pawsitivecheck/syncconsole/internal/database/syncruns"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

// Service records and queries sync run history.
type Service struct {
	runs   *syncruns.Repository
	audit  *audit.Service
	logger *zap.Logger
}

func NewService(runs *syncruns.Repository, auditService *audit.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{runs: runs, audit: auditService, logger: logger.Named("history")}
}

// RecordRun stores the run and its audit event. Both writes are attempted.
func (s *Service) RecordRun(ctx context.Context, run *entities.SyncRun) error {
	var errs []error
	if err := s.runs.Create(ctx, run); err != nil {
		errs = append(errs, fmt.Errorf("failed to save sync run: %w", err))
	}
	if s.audit != nil {
		if err := s.audit.LogSyncRun(0, run); err != nil {
			errs = append(errs, fmt.Errorf("failed to audit sync run: %w", err))
		}
	}
	return errors.Join(errs...)
}

// List returns a page of runs, most recent first.
func (s *Service) List(ctx context.Context, filter syncruns.Filter) ([]entities.SyncRun, int64, error) {
	return s.runs.List(ctx, filter)
}

// Latest returns the most recent run of each job.
func (s *Service) Latest(ctx context.Context) (map[entities.SyncJobID]entities.SyncRun, error) {
	return s.runs.LatestPerJob(ctx)
}

// PruneResult reports what a cleanup removed.
type PruneResult struct {
	Runs   int64 `json:"runs"`
	Events int64 `json:"events"`
}

// Prune deletes runs and audit events older than retention.
func (s *Service) Prune(ctx context.Context, retention time.Duration) (PruneResult, error) {
	var result PruneResult
	if retention <= 0 {
		return result, nil
	}

	deleted, err := s.runs.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return result, fmt.Errorf("failed to delete old sync runs: %w", err)
	}
	result.Runs = deleted

	if s.audit != nil {
		deleted, err = s.audit.DeleteOldEvents(retention)
		if err != nil {
			return result, fmt.Errorf("failed to delete old audit events: %w", err)
		}
		result.Events = deleted
	}

	s.logger.Info("History pruned", zap.Int64("runs", result.Runs), zap.Int64("events", result.Events))
	return result, nil
}
