package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pawsitivecheck/syncconsole/internal/config"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPassword = "correct-horse-battery"

func testAuthConfig() config.Auth {
	return config.Auth{
		Mode:             config.AuthModeLocal,
		SessionLifetime:  time.Hour,
		BcryptCost:       4,
		SecureCookies:    false,
		MaxLoginAttempts: 3,
		LockoutDuration:  time.Minute,
		RateLimitWindow:  time.Minute,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Every pooled connection would otherwise get its own empty in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&entities.User{}))
	return db
}

func setupSessionManager(t *testing.T, db *gorm.DB) *SessionManager {
	t.Helper()

	sqlDB, err := db.DB()
	require.NoError(t, err)

	sm, err := NewSessionManager(sqlDB, testAuthConfig())
	require.NoError(t, err)
	return sm
}

type authEvent struct {
	userID  uint
	action  string
	success bool
}

type fakeAuditor struct {
	mu     sync.Mutex
	events []authEvent
}

func (f *fakeAuditor) LogAuth(userID uint, action string, ipAddr, userAgent string, success bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, authEvent{userID: userID, action: action, success: success})
}

func (f *fakeAuditor) Events() []authEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]authEvent(nil), f.events...)
}
