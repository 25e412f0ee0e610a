package syncruns

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.SyncRun{})
	require.NoError(t, err)

	return db
}

func newRun(job entities.SyncJobID, session string, status entities.SyncRunStatus, startedAt time.Time) *entities.SyncRun {
	return &entities.SyncRun{
		RunID:     uuid.NewString(),
		Job:       job,
		Trigger:   entities.SyncTriggerUI,
		Session:   session,
		Status:    status,
		StartedAt: startedAt,
	}
}

func TestRepository_Create(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	run := newRun(entities.SyncJobProducts, "s1", entities.SyncRunSucceeded, time.Now())
	require.NoError(t, repo.Create(ctx, run))
	assert.NotZero(t, run.ID)
	assert.False(t, run.FinishedAt.IsZero())

	got, err := repo.GetByRunID(ctx, run.RunID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entities.SyncJobProducts, got.Job)

	missing, err := repo.GetByRunID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepository_List(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 12; i++ {
		run := newRun(entities.SyncJobRecalls, "s1", entities.SyncRunSucceeded, base.Add(time.Duration(-i)*time.Minute))
		run.Message = fmt.Sprintf("run %d", i)
		require.NoError(t, repo.Create(ctx, run))
	}
	require.NoError(t, repo.Create(ctx, newRun(entities.SyncJobAll, "s2", entities.SyncRunFailed, base)))

	t.Run("all runs", func(t *testing.T) {
		runs, total, err := repo.List(ctx, Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(13), total)
		assert.Len(t, runs, 13)
	})

	t.Run("filter by job", func(t *testing.T) {
		runs, total, err := repo.List(ctx, Filter{Job: entities.SyncJobAll})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, runs, 1)
		assert.Equal(t, entities.SyncRunFailed, runs[0].Status)
	})

	t.Run("filter by session and status", func(t *testing.T) {
		_, total, err := repo.List(ctx, Filter{Session: "s1", Status: entities.SyncRunFailed})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("pagination newest first", func(t *testing.T) {
		page1, total, err := repo.List(ctx, Filter{Job: entities.SyncJobRecalls, Limit: 5})
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)
		require.Len(t, page1, 5)
		assert.Equal(t, "run 0", page1[0].Message)

		page2, _, err := repo.List(ctx, Filter{Job: entities.SyncJobRecalls, Limit: 5, Offset: 5})
		require.NoError(t, err)
		require.Len(t, page2, 5)
		assert.Equal(t, "run 5", page2[0].Message)
	})
}

func TestRepository_LatestPerJob(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Now()

	older := newRun(entities.SyncJobProducts, "s1", entities.SyncRunFailed, base.Add(-time.Hour))
	newer := newRun(entities.SyncJobProducts, "s1", entities.SyncRunSucceeded, base)
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	latest, err := repo.LatestPerJob(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, newer.RunID, latest[entities.SyncJobProducts].RunID)
}

func TestRepository_DeleteOlderThan(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newRun(entities.SyncJobAll, "", entities.SyncRunSucceeded, now.AddDate(0, 0, -40))))
	require.NoError(t, repo.Create(ctx, newRun(entities.SyncJobAll, "", entities.SyncRunSucceeded, now.AddDate(0, 0, -10))))

	deleted, err := repo.DeleteOlderThan(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
