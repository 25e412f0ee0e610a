package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/auth"
	"github.com/pawsitivecheck/syncconsole/internal/config"
	http_controllers "github.com/pawsitivecheck/syncconsole/internal/http"
	"github.com/pawsitivecheck/syncconsole/internal/scheduler"
	"github.com/pawsitivecheck/syncconsole/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown", zap.Error(err))
	}

	// Stop background work after the listener so no new jobs arrive
	if onShutdown != nil {
		onShutdown(ctx)
	}

	logger.Info("Server exiting")
}

func Run(cfg *config.Config, logger *zap.Logger, version string) {
	logger.Info("Starting PawsitiveCheck sync console", zap.String("version", version))

	if cfg.AdminAPI.Token == "" {
		logger.Warn("ADMIN_API_TOKEN is not set; the admin API will likely reject sync requests")
	}

	baseCtx, cancelRuns := context.WithCancel(context.Background())
	defer cancelRuns()

	core, err := NewCore(baseCtx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}

	if err := core.Status.Start(baseCtx); err != nil {
		logger.Fatal("Failed to start status poller", zap.Error(err))
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var queue http_controllers.TaskQueue
	var enqueuer scheduler.Enqueuer
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks), logger)
		if err != nil {
			logger.Fatal("Failed to initialize task queue", zap.Error(err))
		}

		// Queued runs share the global coordinator so that they serialize with each other
		taskClient.Register(
			tasks.NewSyncJobQueue(core.Coordinators.For(""), logger),
			tasks.NewCleanupHistoryQueue(core.History, logger),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(baseCtx)
		go taskClient.Start(taskCtx)

		queue = taskClient
		enqueuer = taskClient
	}

	syncScheduler := scheduler.NewSyncScheduler(cfg.Sync, enqueuer, core.Coordinators, logger)
	if err := syncScheduler.Start(baseCtx); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	routerCfg := http_controllers.RouterConfig{
		Coordinators:  core.Coordinators,
		Status:        core.Status,
		History:       core.History,
		Audit:         core.Audit,
		Tasks:         queue,
		Schedules:     syncScheduler,
		Database:      core.DB,
		Metrics:       core.Telemetry.Handler,
		AuthConfig:    cfg.Auth,
		SecureCookies: cfg.Auth.SecureCookies,
		Logger:        logger,
		Version:       version,
	}

	var authController *auth.AuthController
	if cfg.Auth.Mode == config.AuthModeLocal {
		logger.Info("Authentication mode: local")
		authController = configureAuth(cfg, core, logger, &routerCfg)
	} else {
		logger.Info("Authentication mode: none (every caller shares one coordinator)")
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		syncScheduler.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		// In-flight runs settle as failures and are still recorded
		cancelRuns()
		if authController != nil {
			authController.Stop()
		}
		core.Close(ctx)
		if taskClient != nil {
			if err := taskClient.Close(); err != nil {
				logger.Warn("Error closing task client", zap.Error(err))
			}
		}
		_ = logger.Sync()
	}

	Serve(router, cfg, logger, onShutdown)
}

// configureAuth builds the session-backed authentication stack and fills the
// auth fields of routerCfg.
func configureAuth(cfg *config.Config, core *Core, logger *zap.Logger, routerCfg *http_controllers.RouterConfig) *auth.AuthController {
	authService := auth.NewService(core.DB.DB, cfg.Auth)

	sqlDB, err := core.DB.DB.DB()
	if err != nil {
		logger.Fatal("Failed to get SQL DB for sessions", zap.Error(err))
	}

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth, auth.WithSessionLogger(logger))
	if err != nil {
		logger.Fatal("Failed to initialize session manager", zap.Error(err))
	}

	// Generate or use configured CSRF secret
	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			logger.Fatal("Failed to generate CSRF secret", zap.Error(err))
		}
		csrfSecret, _ = hex.DecodeString(secret)
		logger.Info("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	authController, err := auth.NewAuthController(authService, sessionManager, cfg.Auth, core.Audit, logger)
	if err != nil {
		logger.Fatal("Failed to initialize auth controller", zap.Error(err))
	}

	if hasUsers, _ := authService.HasUsers(); !hasUsers {
		logger.Info("No users found. Visit /setup to create an administrator account.")
	}

	routerCfg.AuthMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
	routerCfg.SessionManager = sessionManager
	routerCfg.AuthController = authController
	routerCfg.CSRFSecret = csrfSecret
	return authController
}
