// Package syncruns provides database operations for sync run history.
//
// # Usage
//
//	repo := syncruns.NewRepository(db)
//	err := repo.Create(ctx, run)
//	runs, total, err := repo.List(ctx, syncruns.Filter{Limit: 20})
package syncruns

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Filter narrows a history listing. Zero values match everything.
type Filter struct {
	Job     entities.SyncJobID
	Session string
	Status  entities.SyncRunStatus
	Limit   int
	Offset  int
}

// Repository handles sync run persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new sync run repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a settled run.
func (r *Repository) Create(ctx context.Context, run *entities.SyncRun) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(run).Error
}

// List returns runs matching filter, most recent first, plus the total match count.
func (r *Repository) List(ctx context.Context, filter Filter) ([]entities.SyncRun, int64, error) {
	query := r.db.WithContext(ctx).Model(&entities.SyncRun{})
	if filter.Job != "" {
		query = query.Where("job = ?", filter.Job)
	}
	if filter.Session != "" {
		query = query.Where("session = ?", filter.Session)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	var runs []entities.SyncRun
	err := query.Order("started_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&runs).Error
	return runs, total, err
}

// GetByRunID returns one run by its public identifier, or nil when absent.
func (r *Repository) GetByRunID(ctx context.Context, runID string) (*entities.SyncRun, error) {
	var run entities.SyncRun
	err := r.db.WithContext(ctx).Where("run_id = ?", runID).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// LatestPerJob returns the most recent run of every job that has one.
func (r *Repository) LatestPerJob(ctx context.Context) (map[entities.SyncJobID]entities.SyncRun, error) {
	latest := make(map[entities.SyncJobID]entities.SyncRun)
	for _, job := range entities.AllSyncJobs {
		var run entities.SyncRun
		err := r.db.WithContext(ctx).Where("job = ?", job).Order("started_at DESC").Order("id DESC").First(&run).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		latest[job] = run
	}
	return latest, nil
}

// DeleteOlderThan removes runs that started before cutoff and returns how many were removed.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("started_at < ?", cutoff).Delete(&entities.SyncRun{})
	return result.RowsAffected, result.Error
}
