// Package statuscache keeps the latest sync status snapshot fresh by polling
// the admin API on a fixed interval and on demand.
package statuscache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

// DefaultPollInterval is how often the snapshot is refetched.
const DefaultPollInterval = 30 * time.Second

// Fetcher loads the status snapshot from upstream.
type Fetcher interface {
	Status(ctx context.Context) (*entities.SyncStatus, error)
}

// Metrics receives fetch outcomes.
type Metrics interface {
	RecordStatusFetch(ctx context.Context, success bool)
}

// Option configures a Cache.
type Option func(*Cache)

// WithMetrics sets the fetch metrics hook.
func WithMetrics(m Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// Snapshot is the cached view. Status keeps the last good value when a later
// fetch fails; Err describes that failure.
type Snapshot struct {
	Status    *entities.SyncStatus `json:"status"`
	FetchedAt time.Time            `json:"fetchedAt"`
	Err       error                `json:"-"`
	ErrAt     time.Time            `json:"errorAt,omitempty"`
}

// Stale reports whether the last fetch failed.
func (s Snapshot) Stale() bool {
	return s.Err != nil
}

// Cache holds the status snapshot and its poller.
type Cache struct {
	fetcher  Fetcher
	interval time.Duration
	logger   *zap.Logger
	metrics  Metrics

	group   singleflight.Group
	started atomic.Uint64

	mu        sync.RWMutex
	applied   uint64
	snapshot  Snapshot
	cron      *cron.Cron
	isRunning bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New creates a cache. A non-positive interval means DefaultPollInterval.
func New(fetcher Fetcher, interval time.Duration, logger *zap.Logger, opts ...Option) *Cache {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		fetcher:  fetcher,
		interval: interval,
		logger:   logger.Named("statuscache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start fetches once immediately, then polls on the configured interval
// until Stop is called or ctx is cancelled.
func (c *Cache) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return nil
	}

	pollCtx, cancel := context.WithCancel(ctx)
	c.cron = cron.New()
	if _, err := c.cron.AddFunc("@every "+c.interval.String(), func() {
		c.poll(pollCtx)
	}); err != nil {
		cancel()
		return fmt.Errorf("failed to schedule status poll: %w", err)
	}

	c.cancel = cancel
	c.cron.Start()
	c.isRunning = true

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.poll(pollCtx)
	}()

	c.logger.Info("Status poller started", zap.Duration("interval", c.interval))
	return nil
}

// Stop halts polling and waits for in-flight fetches started by the poller.
func (c *Cache) Stop() {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return
	}
	c.isRunning = false
	c.cancel()
	stopCtx := c.cron.Stop()
	c.mu.Unlock()

	<-stopCtx.Done()
	c.wg.Wait()
	c.logger.Info("Status poller stopped")
}

// Invalidate forces a refetch whose request is sent after the call. It never
// joins a fetch that was already in flight, since that one may predate the
// change being reported. Polls and refreshes that arrive meanwhile join it.
func (c *Cache) Invalidate(ctx context.Context) error {
	c.group.Forget("status")
	return c.Refresh(ctx)
}

// Refresh fetches the snapshot, joining a fetch already in flight if there is one.
func (c *Cache) Refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("status", func() (any, error) {
		return nil, c.fetch(ctx)
	})
	return err
}

// Snapshot returns the cached view.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Interval returns the poll interval.
func (c *Cache) Interval() time.Duration {
	return c.interval
}

func (c *Cache) poll(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("Status poll failed", zap.Error(err))
	}
}

func (c *Cache) fetch(ctx context.Context) error {
	seq := c.started.Add(1)
	status, err := c.fetcher.Status(ctx)
	if c.metrics != nil {
		c.metrics.RecordStatusFetch(ctx, err == nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A fetch that started earlier must not replace a newer result.
	if seq < c.applied {
		return err
	}
	c.applied = seq

	if err != nil {
		c.snapshot.Err = err
		c.snapshot.ErrAt = time.Now()
		return err
	}
	c.snapshot = Snapshot{Status: status, FetchedAt: time.Now()}
	return nil
}
