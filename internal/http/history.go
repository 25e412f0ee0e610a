package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/auth"
	"github.com/pawsitivecheck/syncconsole/internal/coordinator"
	"github.com/pawsitivecheck/syncconsole/internal/database/syncruns"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// HistoryController lists settled sync runs.
type HistoryController struct {
	history      HistoryReader
	coordinators *coordinator.Registry
	logger       *zap.Logger
}

func NewHistoryController(history HistoryReader, coordinators *coordinator.Registry, logger *zap.Logger) *HistoryController {
	return &HistoryController{history: history, coordinators: coordinators, logger: logger}
}

// List handles GET /admin/sync/history
//
// Query parameters: job, status (succeeded|failed), mine=true to restrict to
// the caller's console, limit and offset.
func (hc *HistoryController) List(c *gin.Context) {
	limit, offset, ok := parsePagination(c, defaultHistoryLimit, maxHistoryLimit)
	if !ok {
		return
	}

	filter := syncruns.Filter{Limit: limit, Offset: offset}

	if raw := c.Query("job"); raw != "" {
		job, err := entities.ParseSyncJobID(raw)
		if err != nil {
			respondBadRequest(c, "invalid job")
			return
		}
		filter.Job = job
	}

	switch status := entities.SyncRunStatus(c.Query("status")); status {
	case "":
	case entities.SyncRunSucceeded, entities.SyncRunFailed:
		filter.Status = status
	default:
		respondBadRequest(c, "invalid status")
		return
	}

	if c.Query("mine") == "true" && hc.coordinators != nil {
		filter.Session = hc.coordinators.For(auth.GetConsoleKey(c)).Key()
	}

	runs, total, err := hc.history.List(c.Request.Context(), filter)
	if err != nil {
		respondInternalError(c, hc.logger, err, "list sync history")
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(runs, total, limit, offset))
}
