package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Local admin accounts with sessions
)

// CoordinatorScope controls how sync coordinators are shared between sessions.
type CoordinatorScope string

const (
	CoordinatorScopeSession CoordinatorScope = "session" // One coordinator per admin session (default)
	CoordinatorScopeGlobal  CoordinatorScope = "global"  // All sessions share one coordinator
)

type (
	Config struct {
		HTTP
		Global
		Database
		Log
		AdminAPI
		Sync
		Tasks
		Auth
		Metrics
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Log struct {
		Level  string // debug, info, warn, error
		Format string // json or console
	}
	AdminAPI struct {
		BaseURL        string
		Token          string
		RequestTimeout time.Duration // Transport timeout for status polls
	}
	Sync struct {
		StatusPollInterval   time.Duration // How often the status snapshot is refetched (default: 30s)
		JobTimeout           time.Duration // Upper bound for one sync request, 0 disables (default: 10m)
		ToastDuration        time.Duration // Default notification lifetime (default: 5s)
		ToastDurationAll     time.Duration // Notification lifetime for "sync all" (default: 8s)
		CoordinatorScope     CoordinatorScope
		SessionIdleTTL       time.Duration // Idle coordinators are evicted after this (default: 1h)
		Schedule             string        // Cron format for automatic "sync all", empty disables
		HistoryRetentionDays int           // Days to keep sync history and audit events (default: 30)
		CleanupSchedule      string        // Cron format for history cleanup (default: daily 03:00)
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
		RateLimitWindow  time.Duration // Window for counting per-IP failures (default: 15m)
	}
	Metrics struct {
		Enabled bool
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	// Admin API defaults
	v.SetDefault("admin_api_base_url", DefaultAdminAPIBaseURL)
	v.SetDefault("admin_api_token", "")
	v.SetDefault("admin_api_request_timeout", "30s")

	// Sync coordinator defaults
	v.SetDefault("sync_status_poll_interval", "30s")
	v.SetDefault("sync_job_timeout", "10m")
	v.SetDefault("sync_toast_duration", "5s")
	v.SetDefault("sync_toast_duration_all", "8s")
	v.SetDefault("sync_coordinator_scope", string(CoordinatorScopeSession))
	v.SetDefault("sync_session_idle_ttl", "1h")
	v.SetDefault("sync_schedule", "") // Disabled unless set, e.g. "0 3 * * *"
	v.SetDefault("sync_history_retention_days", 30)
	v.SetDefault("sync_cleanup_schedule", "0 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "30m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "12h") // 12 hours
	v.SetDefault("auth_bcrypt_cost", 12)         // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)    // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)   // Max failed attempts
	v.SetDefault("auth_lockout_duration", "30m") // Lockout duration
	v.SetDefault("auth_rate_limit_window", "15m")

	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Log: Log{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		AdminAPI: AdminAPI{
			BaseURL:        v.GetString("ADMIN_API_BASE_URL"),
			Token:          v.GetString("ADMIN_API_TOKEN"),
			RequestTimeout: v.GetDuration("ADMIN_API_REQUEST_TIMEOUT"),
		},
		Sync: Sync{
			StatusPollInterval:   v.GetDuration("SYNC_STATUS_POLL_INTERVAL"),
			JobTimeout:           v.GetDuration("SYNC_JOB_TIMEOUT"),
			ToastDuration:        v.GetDuration("SYNC_TOAST_DURATION"),
			ToastDurationAll:     v.GetDuration("SYNC_TOAST_DURATION_ALL"),
			CoordinatorScope:     CoordinatorScope(v.GetString("SYNC_COORDINATOR_SCOPE")),
			SessionIdleTTL:       v.GetDuration("SYNC_SESSION_IDLE_TTL"),
			Schedule:             v.GetString("SYNC_SCHEDULE"),
			HistoryRetentionDays: v.GetInt("SYNC_HISTORY_RETENTION_DAYS"),
			CleanupSchedule:      v.GetString("SYNC_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}
