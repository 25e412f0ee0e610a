package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/auth"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	requireAdmin := func(c *gin.Context) { c.Next() }
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
		requireAdmin = cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin)
	} else {
		// No auth: every caller is an administrator on the shared coordinator
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Set(auth.ContextKeyRole, entities.UserRoleAdmin)
			c.Next()
		})
	}

	// Inject auth data for templates
	router.Use(AuthContextMiddleware(cfg.AuthConfig.Mode))

	router.SetHTMLTemplate(loadTemplates())
	router.StaticFS("/static", http.FS(staticFiles()))

	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(router)
	}

	health := NewHealthController(cfg.Database, cfg.Status, cfg.Version)
	health.coordinators = cfg.Coordinators
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/admin/sync")
	})

	syncController := NewSyncController(cfg.Coordinators, cfg.Status, cfg.History, cfg.Schedules, cfg.Logger, cfg.Version)
	statusController := NewStatusController(cfg.Status, cfg.Audit, cfg.Logger)

	admin := router.Group("/admin")
	{
		admin.GET("/sync", syncController.Dashboard)
		admin.GET("/sync/panel", syncController.Panel)
		admin.GET("/sync/state", syncController.State)
		admin.GET("/sync/status", statusController.Get)
		admin.POST("/sync/status/refresh", requireAdmin, statusController.Refresh)
		admin.POST("/sync/jobs/:job", requireAdmin, syncController.Trigger)
		// Dismiss only touches the caller's own notifications.
		admin.POST("/sync/toasts/:id/dismiss", syncController.Dismiss)

		if cfg.History != nil {
			historyController := NewHistoryController(cfg.History, cfg.Coordinators, cfg.Logger)
			admin.GET("/sync/history", historyController.List)
		}
		if cfg.Audit != nil {
			auditController := NewAuditController(cfg.Audit, cfg.Logger)
			admin.GET("/audit", requireAdmin, auditController.List)
		}
	}

	// Task management endpoints
	if cfg.Tasks != nil {
		tasksController := NewTasksController(cfg.Tasks, cfg.Schedules, cfg.Logger)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
		router.POST("/api/tasks/sync/:job", requireAdmin, tasksController.EnqueueSync)
		router.GET("/api/schedules", tasksController.ListSchedules)
	}

	return router
}
