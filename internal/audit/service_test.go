package audit

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	auditRepo "github.com/pawsitivecheck/syncconsole/internal/database/audit"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Async writers must share the single in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	repo := auditRepo.NewRepository(db)
	svc := NewService(repo, nil)

	return svc, db
}

func TestService_LogSyncRun(t *testing.T) {
	svc, db := setupTestService(t)
	count := 1200

	t.Run("successful run", func(t *testing.T) {
		run := &entities.SyncRun{
			ID:          7,
			RunID:       "run-1",
			Job:         entities.SyncJobProducts,
			Trigger:     entities.SyncTriggerUI,
			Status:      entities.SyncRunSucceeded,
			Message:     "Synced 1200 products",
			SyncedCount: &count,
		}
		require.NoError(t, svc.LogSyncRun(3, run))

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ?", "sync_products").First(&event).Error)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, uint(3), event.UserID)
		assert.Equal(t, "sync_run", event.EntityType)
		require.NotNil(t, event.EntityID)
		assert.Equal(t, uint(7), *event.EntityID)
		assert.Contains(t, event.Metadata, `"synced_count":1200`)
		assert.Contains(t, event.Metadata, `"run_id":"run-1"`)
	})

	t.Run("failed run keeps internal error", func(t *testing.T) {
		run := &entities.SyncRun{
			RunID:   "run-2",
			Job:     entities.SyncJobAll,
			Status:  entities.SyncRunFailed,
			Message: "Unable to complete full synchronization",
			Error:   strings.Repeat("x", 600),
		}
		require.NoError(t, svc.LogSyncRun(0, run))

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ?", "sync_all").First(&event).Error)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Len(t, event.ErrorMsg, 500)
		assert.Nil(t, event.EntityID)
	})
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAuth(1, "login", "127.0.0.1", "test-agent", true)
	svc.LogAuth(0, "login", "127.0.0.1", "test-agent", false)
	svc.Flush()

	var events []entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventAuth).Order("id").Find(&events).Error)
	require.Len(t, events, 2)

	statuses := []entities.AuditStatus{events[0].Status, events[1].Status}
	assert.ElementsMatch(t, []entities.AuditStatus{entities.AuditStatusSuccess, entities.AuditStatusFailed}, statuses)
}

func TestService_LogAdmin(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAdmin(1, "status_refresh", "Manual status refresh", errors.New("upstream down"))
	svc.Flush()

	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "status_refresh").First(&event).Error)
	assert.Equal(t, entities.AuditEventAdmin, event.EventType)
	assert.Equal(t, entities.AuditStatusFailed, event.Status)
	assert.Equal(t, "upstream down", event.ErrorMsg)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	require.NoError(t, svc.Log(&entities.AuditEvent{
		EventType: entities.AuditEventSync,
		Action:    "old",
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, svc.Log(&entities.AuditEvent{EventType: entities.AuditEventSync, Action: "new"}))

	deleted, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, total, err := svc.GetEvents(auditRepo.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "new", events[0].Action)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
