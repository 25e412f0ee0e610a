package entrypoint

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/adminapi"
	"github.com/pawsitivecheck/syncconsole/internal/audit"
	"github.com/pawsitivecheck/syncconsole/internal/config"
	"github.com/pawsitivecheck/syncconsole/internal/coordinator"
	"github.com/pawsitivecheck/syncconsole/internal/database"
	auditrepo "github.com/pawsitivecheck/syncconsole/internal/database/audit"
	"github.com/pawsitivecheck/syncconsole/internal/database/syncruns"
	"github.com/pawsitivecheck/syncconsole/internal/history"
	"github.com/pawsitivecheck/syncconsole/internal/statuscache"
	"github.com/pawsitivecheck/syncconsole/internal/telemetry"
)

// Core holds the collaborators shared by the server and the CLI commands.
type Core struct {
	Logger       *zap.Logger
	DB           *database.Database
	Client       *adminapi.Client
	Telemetry    *telemetry.Provider
	Metrics      *telemetry.SyncMetrics
	Status       *statuscache.Cache
	Audit        *audit.Service
	History      *history.Service
	Coordinators *coordinator.Registry
}

// NewCore opens the database and wires the sync coordinators. Background runs
// started through the registry inherit baseCtx.
func NewCore(baseCtx context.Context, cfg *config.Config, logger *zap.Logger) (*Core, error) {
	db, err := database.NewDatabase(cfg.Database.Path, logger)
	if err != nil {
		return nil, err
	}

	provider, err := telemetry.NewProvider(cfg.Metrics.Enabled, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics, err := telemetry.NewSyncMetrics(provider.MeterProvider)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to register sync metrics: %w", err)
	}

	client := adminapi.NewClient(cfg.AdminAPI.BaseURL,
		adminapi.WithToken(cfg.AdminAPI.Token),
		adminapi.WithStatusTimeout(cfg.AdminAPI.RequestTimeout),
	)
	status := statuscache.New(client, cfg.Sync.StatusPollInterval, logger, statuscache.WithMetrics(metrics))

	auditService := audit.NewService(auditrepo.NewRepository(db.DB), logger)
	historyService := history.NewService(syncruns.NewRepository(db.DB), auditService, logger)

	factory := func(key string) *coordinator.Coordinator {
		return coordinator.New(client, status,
			coordinator.WithKey(key),
			coordinator.WithRunRecorder(historyService),
			coordinator.WithMetrics(metrics),
			coordinator.WithLogger(logger.Named("coordinator")),
			coordinator.WithBaseContext(baseCtx),
			coordinator.WithJobTimeout(cfg.Sync.JobTimeout),
			coordinator.WithToastDurations(cfg.Sync.ToastDuration, cfg.Sync.ToastDurationAll),
		)
	}
	opts := []coordinator.RegistryOption{coordinator.WithIdleTTL(cfg.Sync.SessionIdleTTL)}
	if cfg.Sync.CoordinatorScope == config.CoordinatorScopeGlobal {
		opts = append(opts, coordinator.WithGlobalScope())
	}

	return &Core{
		Logger:       logger,
		DB:           db,
		Client:       client,
		Telemetry:    provider,
		Metrics:      metrics,
		Status:       status,
		Audit:        auditService,
		History:      historyService,
		Coordinators: coordinator.NewRegistry(factory, opts...),
	}, nil
}

// Close waits for in-flight runs, then releases every resource.
func (c *Core) Close(ctx context.Context) {
	c.Coordinators.Wait()
	c.Status.Stop()
	c.Audit.Flush()
	if err := c.Telemetry.Shutdown(ctx); err != nil {
		c.Logger.Warn("Metrics shutdown failed", zap.Error(err))
	}
	if err := c.DB.Close(); err != nil {
		c.Logger.Warn("Error closing database", zap.Error(err))
	}
}
