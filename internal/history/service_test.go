package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pawsitivecheck/syncconsole/internal/audit"
	auditRepo "github.com/pawsitivecheck/syncconsole/internal/database/audit"
	"github.com/pawsitivecheck/syncconsole/internal/database/syncruns"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&entities.SyncRun{}, &entities.AuditEvent{}))

	auditService := audit.NewService(auditRepo.NewRepository(db), nil)
	return NewService(syncruns.NewRepository(db), auditService, nil), db
}

func TestService_RecordRun(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	run := &entities.SyncRun{
		RunID:     uuid.NewString(),
		Job:       entities.SyncJobRecalls,
		Trigger:   entities.SyncTriggerSchedule,
		Status:    entities.SyncRunSucceeded,
		Message:   "Synced 4 recalls",
		StartedAt: time.Now(),
	}
	require.NoError(t, svc.RecordRun(ctx, run))
	assert.NotZero(t, run.ID)

	runs, total, err := svc.List(ctx, syncruns.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Synced 4 recalls", runs[0].Message)

	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "sync_recalls").First(&event).Error)
	require.NotNil(t, event.EntityID)
	assert.Equal(t, run.ID, *event.EntityID)

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.RunID, latest[entities.SyncJobRecalls].RunID)
}

func TestService_Prune(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	old := &entities.SyncRun{RunID: uuid.NewString(), Job: entities.SyncJobAll, Status: entities.SyncRunFailed, StartedAt: time.Now().AddDate(0, 0, -45)}
	recent := &entities.SyncRun{RunID: uuid.NewString(), Job: entities.SyncJobAll, Status: entities.SyncRunSucceeded, StartedAt: time.Now()}
	require.NoError(t, svc.RecordRun(ctx, old))
	require.NoError(t, svc.RecordRun(ctx, recent))

	result, err := svc.Prune(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Runs)
	assert.Equal(t, int64(0), result.Events, "audit events were written just now")

	_, total, err := svc.List(ctx, syncruns.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestService_PruneDisabled(t *testing.T) {
	svc, _ := setupTestService(t)

	result, err := svc.Prune(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, PruneResult{}, result)
}
