package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/auth"
	"github.com/pawsitivecheck/syncconsole/internal/config"
	"github.com/pawsitivecheck/syncconsole/internal/coordinator"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Sync console core
	Coordinators *coordinator.Registry
	Status       StatusSource
	History      HistoryReader

	// Optional collaborators; nil disables the routes that need them
	Audit     AuditStore
	Tasks     TaskQueue
	Schedules ScheduleLister
	Database  HealthChecker
	Metrics   http.Handler

	// Authentication; the middleware, session manager and controller are nil
	// unless AuthConfig.Mode is local.
	AuthConfig     config.Auth
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager
	AuthController *auth.AuthController
	CSRFSecret     []byte
	SecureCookies  bool

	Logger  *zap.Logger
	Version string
}
