// Package coordinator serializes sync jobs against the admin API and reports
// each settled job as a notification.
//
// A Coordinator holds one active-job slot. A start request is accepted only
// while the slot is empty; it is then filled synchronously, the remote call
// runs, a notification is pushed, a status refetch is started on success,
// and the slot is emptied again on every path without waiting for that refetch.
package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/entities"
	"github.com/pawsitivecheck/syncconsole/internal/notify"
)

// ErrSyncInProgress is returned when a start is requested while a job is active.
var ErrSyncInProgress = errors.New("a sync job is already in progress")

// Syncer performs the remote call for one job.
type Syncer interface {
	Sync(ctx context.Context, endpoint string) (*entities.SyncResult, error)
}

// StatusInvalidator refreshes the cached sync status.
type StatusInvalidator interface {
	Invalidate(ctx context.Context) error
}

// RunRecorder persists settled runs.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *entities.SyncRun) error
}

// Metrics receives run measurements.
type Metrics interface {
	RecordSync(ctx context.Context, job string, duration time.Duration, success bool)
	RecordRejected(ctx context.Context, job string)
}

// State is a point-in-time view of the active-job slot.
type State struct {
	Active *entities.SyncJobID `json:"active"`
	Since  time.Time           `json:"since,omitempty"`
}

// Running reports whether a job occupies the slot.
func (s State) Running() bool {
	return s.Active != nil
}

// Outcome describes how a run settled.
type Outcome struct {
	RunID      string
	Job        entities.SyncJobID
	Result     *entities.SyncResult
	Err        error
	Toast      notify.Toast
	StartedAt  time.Time
	FinishedAt time.Time
}

// Succeeded reports whether the remote call returned a decodable 2xx body.
func (o Outcome) Succeeded() bool {
	return o.Err == nil
}

// Duration of the remote call plus reporting.
func (o Outcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}

// Coordinator owns one active-job slot and the notifications of the runs it
// settles. Build one with New; the zero value is not usable.
type Coordinator struct {
	key    string
	syncer Syncer
	status StatusInvalidator
	inbox  *notify.Inbox

	recorder RunRecorder
	metrics  Metrics
	logger   *zap.Logger

	baseCtx     context.Context
	jobTimeout  time.Duration
	toastDef    time.Duration
	toastAll    time.Duration
	now         func() time.Time
	runInFlight sync.WaitGroup

	mu       sync.Mutex
	active   *entities.SyncJobID
	since    time.Time
	lastUsed time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithKey labels the coordinator, typically with the owning session.
func WithKey(key string) Option {
	return func(c *Coordinator) {
		c.key = key
	}
}

// WithRunRecorder sets the history/audit hook.
func WithRunRecorder(r RunRecorder) Option {
	return func(c *Coordinator) {
		c.recorder = r
	}
}

// WithMetrics sets the metrics hook.
func WithMetrics(m Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// WithBaseContext sets the parent context of background runs. Cancelling it
// makes in-flight runs settle as failures.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Coordinator) {
		c.baseCtx = ctx
	}
}

// WithJobTimeout bounds each remote call. Zero disables the bound.
func WithJobTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.jobTimeout = d
	}
}

// WithToastDurations overrides how long notifications stay visible.
func WithToastDurations(def, all time.Duration) Option {
	return func(c *Coordinator) {
		if def > 0 {
			c.toastDef = def
		}
		if all > 0 {
			c.toastAll = all
		}
	}
}

// New creates an idle coordinator.
func New(syncer Syncer, status StatusInvalidator, opts ...Option) *Coordinator {
	c := &Coordinator{
		syncer:   syncer,
		status:   status,
		baseCtx:  context.Background(),
		toastDef: DefaultToastDuration,
		toastAll: AllToastDuration,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.inbox = notify.NewInbox(notify.DefaultCapacity)
	c.logger = c.logger.With(zap.String("coordinator", c.key))
	c.lastUsed = c.now()
	return c
}

// Key returns the coordinator label.
func (c *Coordinator) Key() string {
	return c.key
}

// Inbox returns the notifications pushed by this coordinator.
func (c *Coordinator) Inbox() *notify.Inbox {
	return c.inbox
}

// State returns a snapshot of the active-job slot.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil {
		return State{}
	}
	job := *c.active
	return State{Active: &job, Since: c.since}
}

// Enabled reports whether a start for job would currently be accepted.
// While any job runs, every job is disabled.
func (c *Coordinator) Enabled(job entities.SyncJobID) bool {
	if _, ok := jobSpecs[job]; !ok {
		return false
	}
	return !c.State().Running()
}

// Spec returns the dispatch entry for job using this coordinator's toast durations.
func (c *Coordinator) Spec(job entities.SyncJobID) (JobSpec, bool) {
	return specWithDurations(job, c.toastDef, c.toastAll)
}

// Trigger starts job in the background and returns once the slot is taken.
func (c *Coordinator) Trigger(job entities.SyncJobID, origin entities.SyncTrigger) error {
	spec, startedAt, err := c.acquire(job)
	if err != nil {
		return err
	}

	c.runInFlight.Add(1)
	go func() {
		defer c.runInFlight.Done()
		c.execute(c.baseCtx, spec, origin, startedAt)
	}()
	return nil
}

// Run performs job on the calling goroutine and returns how it settled.
// The returned error is non-nil only when the start was rejected.
func (c *Coordinator) Run(ctx context.Context, job entities.SyncJobID, origin entities.SyncTrigger) (Outcome, error) {
	spec, startedAt, err := c.acquire(job)
	if err != nil {
		return Outcome{}, err
	}
	return c.execute(ctx, spec, origin, startedAt), nil
}

// Wait blocks until background runs started by Trigger, and the status
// refetches that follow successful runs, have settled.
func (c *Coordinator) Wait() {
	c.runInFlight.Wait()
}

func (c *Coordinator) acquire(job entities.SyncJobID) (JobSpec, time.Time, error) {
	spec, ok := c.Spec(job)
	if !ok {
		return JobSpec{}, time.Time{}, fmt.Errorf("%w: %q", entities.ErrUnknownJob, job)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		c.logger.Info("Rejected sync start",
			zap.String("job", job.String()),
			zap.String("active", c.active.String()))
		if c.metrics != nil {
			c.metrics.RecordRejected(context.Background(), job.String())
		}
		return JobSpec{}, time.Time{}, ErrSyncInProgress
	}

	now := c.now()
	active := job
	c.active = &active
	c.since = now
	c.lastUsed = now
	return spec, now, nil
}

func (c *Coordinator) release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.active = nil
	c.since = time.Time{}
	c.lastUsed = c.now()
}

func (c *Coordinator) execute(ctx context.Context, spec JobSpec, origin entities.SyncTrigger, startedAt time.Time) Outcome {
	defer c.release()

	out := Outcome{
		RunID:     uuid.NewString(),
		Job:       spec.ID,
		StartedAt: startedAt,
	}

	callCtx := ctx
	if c.jobTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.jobTimeout)
		defer cancel()
	}

	c.logger.Info("Sync started", zap.String("job", spec.ID.String()), zap.String("run_id", out.RunID))

	result, err := c.syncer.Sync(callCtx, spec.Endpoint)
	if err == nil && result == nil {
		err = errors.New("empty sync response")
	}

	if err != nil {
		out.Err = err
		out.Toast = notify.NewToast(FailureTitle, spec.FailureMessage, notify.VariantDestructive, spec.ToastDuration)
		c.inbox.Push(out.Toast)
		c.logger.Warn("Sync failed",
			zap.String("job", spec.ID.String()),
			zap.String("run_id", out.RunID),
			zap.Error(err))
	} else {
		out.Result = result
		out.Toast = notify.NewToast(spec.SuccessTitle, result.Message, notify.VariantDefault, spec.ToastDuration)
		out.Toast.Details = result.Errors()
		c.inbox.Push(out.Toast)
		c.logger.Info("Sync finished",
			zap.String("job", spec.ID.String()),
			zap.String("run_id", out.RunID),
			zap.Int("errors", len(result.Errors())))

		c.refreshStatus()
	}

	out.FinishedAt = c.now()
	c.report(ctx, out, origin)
	return out
}

// refreshStatus starts the status refetch before the slot is released and
// does not wait for it. Wait covers the refetch as well.
func (c *Coordinator) refreshStatus() {
	if c.status == nil {
		return
	}
	c.runInFlight.Add(1)
	go func() {
		defer c.runInFlight.Done()
		if err := c.status.Invalidate(c.baseCtx); err != nil {
			c.logger.Warn("Status refresh after sync failed", zap.Error(err))
		}
	}()
}

func (c *Coordinator) report(ctx context.Context, out Outcome, origin entities.SyncTrigger) {
	if c.metrics != nil {
		c.metrics.RecordSync(ctx, out.Job.String(), out.Duration(), out.Succeeded())
	}
	if c.recorder == nil {
		return
	}

	// The run context may already be cancelled at shutdown; history still gets written.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := c.recorder.RecordRun(recordCtx, newSyncRun(c.key, origin, out)); err != nil {
		c.logger.Error("Failed to record sync run", zap.String("run_id", out.RunID), zap.Error(err))
	}
}

// idleSince returns when the coordinator last changed state, and whether it is running.
func (c *Coordinator) idleSince() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUsed, c.active != nil
}

func (c *Coordinator) touch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastUsed = c.now()
}

func newSyncRun(key string, origin entities.SyncTrigger, out Outcome) *entities.SyncRun {
	run := &entities.SyncRun{
		RunID:      out.RunID,
		Job:        out.Job,
		Trigger:    origin,
		Session:    key,
		Message:    out.Toast.Message,
		StartedAt:  out.StartedAt,
		FinishedAt: out.FinishedAt,
		DurationMs: out.Duration().Milliseconds(),
	}

	if out.Err != nil {
		run.Status = entities.SyncRunFailed
		run.Error = truncate(out.Err.Error(), 500)
		return run
	}

	run.Status = entities.SyncRunSucceeded
	run.SyncedCount = out.Result.SyncedCount
	run.TotalProcessed = out.Result.TotalProcessed
	if errs := out.Result.Errors(); len(errs) > 0 {
		if data, err := json.Marshal(errs); err == nil {
			run.ErrorsJSON = string(data)
		}
	}
	return run
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
