package entities

import (
	"time"
)

type SyncRunStatus string

const (
	SyncRunSucceeded SyncRunStatus = "succeeded"
	SyncRunFailed    SyncRunStatus = "failed"
)

// SyncTrigger records what started a run.
type SyncTrigger string

const (
	SyncTriggerUI       SyncTrigger = "ui"
	SyncTriggerAPI      SyncTrigger = "api"
	SyncTriggerCLI      SyncTrigger = "cli"
	SyncTriggerSchedule SyncTrigger = "schedule"
)

// SyncRun is the persisted history row of one settled job.
// Error holds the internal cause and is never shown in notifications.
type SyncRun struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	RunID          string        `gorm:"size:36;uniqueIndex" json:"run_id"`
	Job            SyncJobID     `gorm:"size:50;index" json:"job"`
	Trigger        SyncTrigger   `gorm:"size:20" json:"trigger"`
	Session        string        `gorm:"size:100;index" json:"session,omitempty"`
	Status         SyncRunStatus `gorm:"size:20;index" json:"status"`
	Message        string        `gorm:"size:500" json:"message,omitempty"`
	Error          string        `gorm:"size:500" json:"error,omitempty"`
	SyncedCount    *int          `json:"synced_count,omitempty"`
	TotalProcessed *int          `json:"total_processed,omitempty"`
	ErrorsJSON     string        `gorm:"type:text" json:"errors,omitempty"`
	StartedAt      time.Time     `gorm:"index" json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
	DurationMs     int64         `json:"duration_ms"`
}

func (SyncRun) TableName() string {
	return "sync_runs"
}
