package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/auth"
	"github.com/pawsitivecheck/syncconsole/internal/coordinator"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
	"github.com/pawsitivecheck/syncconsole/internal/notify"
	"github.com/pawsitivecheck/syncconsole/internal/scheduler"
)

// runningPollInterval is how often the panel refreshes while a job runs.
const runningPollInterval = 2 * time.Second

// SyncController serves the sync dashboard and its job triggers.
type SyncController struct {
	coordinators *coordinator.Registry
	status       StatusSource
	history      HistoryReader
	schedules    ScheduleLister
	logger       *zap.Logger
	version      string
}

// NewSyncController creates the dashboard controller. history and schedules may be nil.
func NewSyncController(coordinators *coordinator.Registry, status StatusSource, history HistoryReader, schedules ScheduleLister, logger *zap.Logger, version string) *SyncController {
	return &SyncController{
		coordinators: coordinators,
		status:       status,
		history:      history,
		schedules:    schedules,
		logger:       logger,
		version:      version,
	}
}

// JobButton is one trigger on the dashboard.
type JobButton struct {
	ID      entities.SyncJobID
	Label   string
	Enabled bool
	Active  bool
	LastRun *entities.SyncRun
}

// PanelView is everything the live panel fragment renders.
type PanelView struct {
	Auth    AuthTemplateData
	State   coordinator.State
	Jobs    []JobButton
	All     JobButton
	Toasts  []notify.Toast
	Status  StatusView
	PollMs  int64
	Flash   string
	Updated time.Time
}

// DashboardView wraps the panel with page-level data.
type DashboardView struct {
	Title     string
	Version   string
	Panel     PanelView
	Schedules []scheduler.Entry
}

// JobState is the JSON form of one trigger.
type JobState struct {
	ID      entities.SyncJobID `json:"id"`
	Label   string             `json:"label"`
	Enabled bool               `json:"enabled"`
	Active  bool               `json:"active"`
}

// ToastResponse is the JSON form of a notification.
type ToastResponse struct {
	notify.Toast
	DurationMs int64 `json:"duration_ms"`
}

// StateResponse answers GET /admin/sync/state.
type StateResponse struct {
	Active *entities.SyncJobID `json:"active"`
	Since  *time.Time          `json:"since,omitempty"`
	Jobs   []JobState          `json:"jobs"`
	Toasts []ToastResponse     `json:"toasts"`
}

// coordinatorFor returns the coordinator owned by the caller's console session.
func (sc *SyncController) coordinatorFor(c *gin.Context) *coordinator.Coordinator {
	return sc.coordinators.For(auth.GetConsoleKey(c))
}

// Dashboard renders the full sync console page.
// GET /admin/sync
func (sc *SyncController) Dashboard(c *gin.Context) {
	view := DashboardView{
		Title:   "Database Sync",
		Version: sc.version,
		Panel:   sc.panelView(c, sc.coordinatorFor(c), c.Query("error")),
	}
	if sc.schedules != nil {
		view.Schedules = sc.schedules.Entries()
	}
	c.HTML(http.StatusOK, "dashboard", view)
}

// Panel renders the live fragment polled by the dashboard.
// GET /admin/sync/panel
func (sc *SyncController) Panel(c *gin.Context) {
	c.HTML(http.StatusOK, "panel", sc.panelView(c, sc.coordinatorFor(c), ""))
}

// State returns the coordinator state as JSON.
// GET /admin/sync/state
func (sc *SyncController) State(c *gin.Context) {
	coord := sc.coordinatorFor(c)
	state := coord.State()

	resp := StateResponse{
		Active: state.Active,
		Jobs:   make([]JobState, 0, len(entities.AllSyncJobs)),
		Toasts: toastResponses(coord.Inbox().Active(time.Now())),
	}
	if state.Running() {
		since := state.Since
		resp.Since = &since
	}
	for _, spec := range coordinator.Specs() {
		resp.Jobs = append(resp.Jobs, JobState{
			ID:      spec.ID,
			Label:   spec.Label,
			Enabled: !state.Running(),
			Active:  state.Active != nil && *state.Active == spec.ID,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// Trigger starts a job on the caller's coordinator.
// POST /admin/sync/jobs/:job
//
// JSON callers get 202 on start, 409 while another job runs and 404 for an
// unknown job. HTMX callers get the refreshed panel; plain forms are redirected
// back to the dashboard.
func (sc *SyncController) Trigger(c *gin.Context) {
	job, err := entities.ParseSyncJobID(c.Param("job"))
	if err != nil {
		respondError(c, http.StatusNotFound, "unknown_job", "unknown sync job")
		return
	}

	origin := entities.SyncTriggerUI
	if wantsJSON(c) {
		origin = entities.SyncTriggerAPI
	}

	coord := sc.coordinatorFor(c)
	err = coord.Trigger(job, origin)
	switch {
	case errors.Is(err, coordinator.ErrSyncInProgress):
		sc.respondRejected(c, coord)
		return
	case err != nil:
		respondInternalError(c, sc.logger, err, "trigger sync")
		return
	}

	if wantsJSON(c) {
		respondAccepted(c, "sync started", gin.H{
			"job":   job,
			"state": coord.State(),
		})
		return
	}
	sc.respondPanel(c, coord, "")
}

func (sc *SyncController) respondRejected(c *gin.Context, coord *coordinator.Coordinator) {
	if wantsJSON(c) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   coordinator.ErrSyncInProgress.Error(),
			Code:    "sync_in_progress",
			Details: coord.State(),
		})
		return
	}
	sc.respondPanel(c, coord, "A sync is already running. Wait for it to finish.")
}

// Dismiss hides a notification before it expires.
// POST /admin/sync/toasts/:id/dismiss
func (sc *SyncController) Dismiss(c *gin.Context) {
	coord := sc.coordinatorFor(c)
	found := coord.Inbox().Dismiss(c.Param("id"))

	if wantsJSON(c) {
		if !found {
			respondNotFound(c, "notification")
			return
		}
		c.JSON(http.StatusOK, SuccessResponse{Message: "dismissed"})
		return
	}
	sc.respondPanel(c, coord, "")
}

// respondPanel re-renders the panel for HTMX or redirects a plain form post.
func (sc *SyncController) respondPanel(c *gin.Context, coord *coordinator.Coordinator, flash string) {
	if isHTMXRequest(c) {
		c.HTML(http.StatusOK, "panel", sc.panelView(c, coord, flash))
		return
	}
	target := "/admin/sync"
	if flash != "" {
		target += "?error=" + url.QueryEscape(flash)
	}
	c.Redirect(http.StatusSeeOther, target)
}

func (sc *SyncController) panelView(c *gin.Context, coord *coordinator.Coordinator, flash string) PanelView {
	now := time.Now()
	state := coord.State()

	view := PanelView{
		Auth:    GetAuthTemplateData(c),
		State:   state,
		Toasts:  coord.Inbox().Active(now),
		Status:  newStatusView(sc.status),
		PollMs:  sc.status.Interval().Milliseconds(),
		Flash:   flash,
		Updated: now,
	}
	if state.Running() {
		view.PollMs = runningPollInterval.Milliseconds()
	}

	latest := sc.latestRuns(c.Request.Context())
	for _, spec := range coordinator.Specs() {
		button := JobButton{
			ID:      spec.ID,
			Label:   spec.Label,
			Enabled: !state.Running() && view.Auth.CanSync,
			Active:  state.Active != nil && *state.Active == spec.ID,
		}
		if run, ok := latest[spec.ID]; ok {
			button.LastRun = &run
		}
		if spec.ID == entities.SyncJobAll {
			view.All = button
			continue
		}
		view.Jobs = append(view.Jobs, button)
	}
	return view
}

func (sc *SyncController) latestRuns(ctx context.Context) map[entities.SyncJobID]entities.SyncRun {
	if sc.history == nil {
		return nil
	}
	latest, err := sc.history.Latest(ctx)
	if err != nil {
		sc.logger.Warn("Failed to load latest runs", zap.Error(err))
		return nil
	}
	return latest
}

func toastResponses(toasts []notify.Toast) []ToastResponse {
	out := make([]ToastResponse, 0, len(toasts))
	for _, t := range toasts {
		out = append(out, ToastResponse{Toast: t, DurationMs: t.DurationMs()})
	}
	return out
}
