package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

// statusUnavailable is shown instead of the raw upstream error.
const statusUnavailable = "Unable to load sync status"

// StatusView is the template form of the cached status snapshot.
type StatusView struct {
	Status    *entities.SyncStatus
	FetchedAt time.Time
	Stale     bool
	Error     string
	ErrorAt   time.Time
	Interval  time.Duration
}

func newStatusView(source StatusSource) StatusView {
	snap := source.Snapshot()
	view := StatusView{
		Status:    snap.Status,
		FetchedAt: snap.FetchedAt,
		Stale:     snap.Stale(),
		ErrorAt:   snap.ErrAt,
		Interval:  source.Interval(),
	}
	if snap.Stale() {
		view.Error = statusUnavailable
	}
	return view
}

// StatusResponse answers GET /admin/sync/status.
type StatusResponse struct {
	Status         *entities.SyncStatus `json:"status"`
	FetchedAt      *time.Time           `json:"fetchedAt,omitempty"`
	Stale          bool                 `json:"stale"`
	Error          string               `json:"error,omitempty"`
	ErrorAt        *time.Time           `json:"errorAt,omitempty"`
	PollIntervalMs int64                `json:"pollIntervalMs"`
}

// StatusController exposes the cached upstream status.
type StatusController struct {
	source StatusSource
	audit  AuditStore
	logger *zap.Logger
}

func NewStatusController(source StatusSource, audit AuditStore, logger *zap.Logger) *StatusController {
	return &StatusController{source: source, audit: audit, logger: logger}
}

// Get returns the last snapshot without contacting upstream.
// GET /admin/sync/status
func (sc *StatusController) Get(c *gin.Context) {
	c.JSON(http.StatusOK, newStatusResponse(newStatusView(sc.source)))
}

// Refresh refetches the snapshot immediately.
// POST /admin/sync/status/refresh
func (sc *StatusController) Refresh(c *gin.Context) {
	err := sc.source.Refresh(c.Request.Context())
	if sc.audit != nil {
		sc.audit.LogAdmin(GetUserID(c), "refresh_status", "Manual sync status refresh", err)
	}
	if err != nil {
		sc.logger.Warn("Manual status refresh failed", zap.Error(err))
	}

	if !wantsJSON(c) {
		c.Redirect(http.StatusSeeOther, "/admin/sync")
		return
	}
	if err != nil {
		respondError(c, http.StatusBadGateway, "status_unavailable", statusUnavailable)
		return
	}
	c.JSON(http.StatusOK, newStatusResponse(newStatusView(sc.source)))
}

func newStatusResponse(view StatusView) StatusResponse {
	resp := StatusResponse{
		Status:         view.Status,
		Stale:          view.Stale,
		Error:          view.Error,
		PollIntervalMs: view.Interval.Milliseconds(),
	}
	if !view.FetchedAt.IsZero() {
		fetchedAt := view.FetchedAt
		resp.FetchedAt = &fetchedAt
	}
	if !view.ErrorAt.IsZero() {
		errorAt := view.ErrorAt
		resp.ErrorAt = &errorAt
	}
	return resp
}
