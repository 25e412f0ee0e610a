package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8190), cfg.HTTP.Port)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, DefaultAdminAPIBaseURL, cfg.AdminAPI.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Sync.StatusPollInterval)
	assert.Equal(t, 10*time.Minute, cfg.Sync.JobTimeout)
	assert.Equal(t, 5*time.Second, cfg.Sync.ToastDuration)
	assert.Equal(t, 8*time.Second, cfg.Sync.ToastDurationAll)
	assert.Equal(t, CoordinatorScopeSession, cfg.Sync.CoordinatorScope)
	assert.Empty(t, cfg.Sync.Schedule)
	assert.Equal(t, 30, cfg.Sync.HistoryRetentionDays)
	assert.Equal(t, AuthModeNone, cfg.Auth.Mode)
	assert.Equal(t, 15*time.Minute, cfg.Auth.RateLimitWindow)
	assert.True(t, cfg.Tasks.Enabled)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("ADMIN_API_BASE_URL", "https://api.pawsitivecheck.test")
	t.Setenv("ADMIN_API_TOKEN", "secret")
	t.Setenv("SYNC_STATUS_POLL_INTERVAL", "45s")
	t.Setenv("SYNC_JOB_TIMEOUT", "0s")
	t.Setenv("SYNC_COORDINATOR_SCOPE", "global")
	t.Setenv("SYNC_SCHEDULE", "0 4 * * *")
	t.Setenv("AUTH_MODE", "local")

	cfg := NewConfig()

	assert.Equal(t, "https://api.pawsitivecheck.test", cfg.AdminAPI.BaseURL)
	assert.Equal(t, "secret", cfg.AdminAPI.Token)
	assert.Equal(t, 45*time.Second, cfg.Sync.StatusPollInterval)
	assert.Equal(t, time.Duration(0), cfg.Sync.JobTimeout)
	assert.Equal(t, CoordinatorScopeGlobal, cfg.Sync.CoordinatorScope)
	assert.Equal(t, "0 4 * * *", cfg.Sync.Schedule)
	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
}
