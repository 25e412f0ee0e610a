// Package database provides the data access layer for the sync console.
//
// # Architecture
//
//	database/
//	├── database.go   # Connection setup and migrations
//	├── syncruns/     # Sync run history
//	└── audit/        # Audit events
//
// Each sub-package provides a Repository type over the shared *gorm.DB:
//
//	db, err := database.NewDatabase("./pawsitive-sync.db", logger)
//	runs := syncruns.NewRepository(db.DB)
//	page, total, err := runs.List(ctx, syncruns.Filter{Job: entities.SyncJobAll})
//
// Users are managed by the auth package directly on the gorm handle.
package database
