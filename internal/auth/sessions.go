package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"net/http"
	"sync"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/config"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

// Session data keys
const (
	SessionKeyUserID    = "user_id"
	SessionKeyUsername  = "username"
	SessionKeyRole      = "role"
	SessionKeyLoginAt   = "login_at"
	SessionKeyConsoleID = "console_id"
)

func init() {
	gob.Register(entities.UserRole(""))
	gob.Register(time.Time{})
}

// SessionManager wraps scs.SessionManager with console-specific accessors.
type SessionManager struct {
	*scs.SessionManager
	logger *zap.Logger
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithSessionLogger sets where session load and commit failures are logged.
func WithSessionLogger(l *zap.Logger) SessionOption {
	return func(sm *SessionManager) {
		if l != nil {
			sm.logger = l
		}
	}
}

// NewSessionManager creates a session manager backed by the sessions table
// of the main database.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth, opts ...SessionOption) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)

	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	manager := &SessionManager{SessionManager: sm, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(manager)
	}
	return manager, nil
}

// SessionLoadSave loads the session named by the request cookie and commits
// it just before the response headers are written. It must run before any
// handler that reads or changes the session.
func (sm *SessionManager) SessionLoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			sm.logger.Error("Failed to load session", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Request = c.Request.WithContext(ctx)

		w := &sessionWriter{ResponseWriter: c.Writer, sm: sm, ctx: ctx}
		c.Writer = w
		c.Next()

		// Redirects and empty bodies may not have written headers yet.
		w.saveSession()
	}
}

// sessionWriter saves the session once, before the first byte of the response.
type sessionWriter struct {
	gin.ResponseWriter
	sm    *SessionManager
	ctx   context.Context
	saved sync.Once
}

func (w *sessionWriter) saveSession() {
	w.saved.Do(func() {
		switch w.sm.Status(w.ctx) {
		case scs.Modified:
			token, expiry, err := w.sm.Commit(w.ctx)
			if err != nil {
				w.sm.logger.Error("Failed to commit session", zap.Error(err))
				return
			}
			w.sm.WriteSessionCookie(w.ctx, w.ResponseWriter, token, expiry)
		case scs.Destroyed:
			w.sm.WriteSessionCookie(w.ctx, w.ResponseWriter, "", time.Time{})
		}
	})
}

func (w *sessionWriter) WriteHeader(code int) {
	w.saveSession()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.saveSession()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.saveSession()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.saveSession()
	return w.ResponseWriter.WriteString(s)
}

// CreateSession stores the user in a freshly renewed session.
// Call it only after the password has been verified.
func (sm *SessionManager) CreateSession(r *http.Request, user *entities.User) error {
	// Renew token to prevent session fixation
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	sm.Put(r.Context(), SessionKeyUserID, int(user.ID))
	sm.Put(r.Context(), SessionKeyUsername, user.Username)
	sm.Put(r.Context(), SessionKeyRole, user.Role)
	sm.Put(r.Context(), SessionKeyLoginAt, time.Now())
	sm.Put(r.Context(), SessionKeyConsoleID, uuid.NewString())

	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetUserID returns 0 if the request is not authenticated.
func (sm *SessionManager) GetUserID(r *http.Request) uint {
	return uint(sm.GetInt(r.Context(), SessionKeyUserID))
}

func (sm *SessionManager) GetUsername(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyUsername)
}

func (sm *SessionManager) GetUserRole(r *http.Request) entities.UserRole {
	role, ok := sm.Get(r.Context(), SessionKeyRole).(entities.UserRole)
	if !ok {
		return ""
	}
	return role
}

// IsAuthenticated returns true if the request has a valid session.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetUserID(r) != 0
}

// ConsoleKey returns the stable identifier of the admin console behind the
// request. It survives token renewal, is not the session token itself, and is
// empty for anonymous requests.
func (sm *SessionManager) ConsoleKey(r *http.Request) string {
	id := sm.GetString(r.Context(), SessionKeyConsoleID)
	if id == "" {
		return ""
	}
	return Fingerprint(id)
}

// SessionData holds the session information for a request.
type SessionData struct {
	UserID     uint
	Username   string
	Role       entities.UserRole
	LoginAt    time.Time
	ConsoleKey string
}

// GetSessionData retrieves all session data at once.
func (sm *SessionManager) GetSessionData(r *http.Request) *SessionData {
	userID := sm.GetUserID(r)
	if userID == 0 {
		return nil
	}

	loginAt, _ := sm.Get(r.Context(), SessionKeyLoginAt).(time.Time)

	return &SessionData{
		UserID:     userID,
		Username:   sm.GetUsername(r),
		Role:       sm.GetUserRole(r),
		LoginAt:    loginAt,
		ConsoleKey: sm.ConsoleKey(r),
	}
}
