package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/config"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
	"github.com/pawsitivecheck/syncconsole/internal/tasks"
)

// SweepInterval is how often idle session coordinators are evicted.
const SweepInterval = 5 * time.Minute

// Enqueuer adds background tasks.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// Sweeper evicts idle coordinators.
type Sweeper interface {
	Sweep() int
}

// Entry describes one scheduled job for display.
type Entry struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Description string     `json:"description"`
	Next        *time.Time `json:"next,omitempty"`
}

// SyncScheduler enqueues automatic full syncs and history cleanup, and sweeps
// idle coordinators.
type SyncScheduler struct {
	cfg     config.Sync
	queue   Enqueuer
	sweeper Sweeper
	logger  *zap.Logger

	cron      *cron.Cron
	entries   map[string]cron.EntryID
	schedules map[string]string
	mu        sync.RWMutex
	isRunning bool
}

// NewSyncScheduler creates a new scheduler instance. queue and sweeper may be nil.
func NewSyncScheduler(cfg config.Sync, queue Enqueuer, sweeper Sweeper, logger *zap.Logger) *SyncScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncScheduler{
		cfg:       cfg,
		queue:     queue,
		sweeper:   sweeper,
		logger:    logger.Named("scheduler"),
		cron:      cron.New(cron.WithParser(cronParser)),
		entries:   make(map[string]cron.EntryID),
		schedules: make(map[string]string),
	}
}

// Start registers the configured schedules and starts the cron loop.
func (s *SyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if s.queue != nil && s.cfg.Schedule != "" {
		if err := s.add("sync_all", s.cfg.Schedule, func() {
			s.enqueue(ctx, tasks.SyncJobTask{Job: entities.SyncJobAll, Trigger: entities.SyncTriggerSchedule})
		}); err != nil {
			return err
		}
	}

	if s.queue != nil && s.cfg.CleanupSchedule != "" && s.cfg.HistoryRetentionDays > 0 {
		if err := s.add("cleanup_history", s.cfg.CleanupSchedule, func() {
			s.enqueue(ctx, tasks.CleanupHistoryTask{RetentionDays: s.cfg.HistoryRetentionDays})
		}); err != nil {
			return err
		}
	}

	if s.sweeper != nil {
		if err := s.add("sweep_sessions", "@every "+SweepInterval.String(), func() {
			if removed := s.sweeper.Sweep(); removed > 0 {
				s.logger.Info("Evicted idle coordinators", zap.Int("count", removed))
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.isRunning = true

	for name, schedule := range s.schedules {
		next, _ := NextRunTime(schedule, time.Now())
		s.logger.Info("Scheduled job registered",
			zap.String("name", name),
			zap.String("schedule", CronDescription(schedule)),
			zap.Timep("next", next))
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

func (s *SyncScheduler) add(name, schedule string, fn func()) error {
	if err := ValidateCronSchedule(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s' for %s: %w", schedule, name, err)
	}
	id, err := s.cron.AddFunc(schedule, fn)
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	s.entries[name] = id
	s.schedules[name] = schedule
	return nil
}

// Stop gracefully stops the scheduler
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false

	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is active
func (s *SyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Entries lists registered schedules with their next activation.
func (s *SyncScheduler) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for name, id := range s.entries {
		entry := Entry{
			Name:        name,
			Schedule:    s.schedules[name],
			Description: CronDescription(s.schedules[name]),
		}
		if s.isRunning {
			if next := s.cron.Entry(id).Next; !next.IsZero() {
				entry.Next = &next
			}
		}
		out = append(out, entry)
	}
	return out
}

// RunNow enqueues a full sync immediately.
func (s *SyncScheduler) RunNow(ctx context.Context) (string, error) {
	if s.queue == nil {
		return "", fmt.Errorf("task queue not configured")
	}
	return s.queue.Enqueue(ctx, tasks.SyncJobTask{Job: entities.SyncJobAll, Trigger: entities.SyncTriggerSchedule})
}

func (s *SyncScheduler) enqueue(ctx context.Context, task backlite.Task) {
	id, err := s.queue.Enqueue(ctx, task)
	if err != nil {
		s.logger.Error("Failed to enqueue scheduled task", zap.String("queue", task.Config().Name), zap.Error(err))
		return
	}
	s.logger.Info("Scheduled task enqueued", zap.String("queue", task.Config().Name), zap.String("task_id", id))
}
