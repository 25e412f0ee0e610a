package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsitivecheck/syncconsole/internal/config"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
	"github.com/pawsitivecheck/syncconsole/internal/tasks"
)

type fakeQueue struct {
	mu    sync.Mutex
	tasks []backlite.Task
}

func (f *fakeQueue) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return "task-1", nil
}

type fakeSweeper struct{}

func (fakeSweeper) Sweep() int { return 0 }

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("0 3 * * *"))
	assert.NoError(t, ValidateCronSchedule("@every 30s"))
	assert.NoError(t, ValidateCronSchedule("@daily"))
	assert.Error(t, ValidateCronSchedule("not a schedule"))
	assert.Error(t, ValidateCronSchedule("0 3 * *"))
}

func TestCronDescription(t *testing.T) {
	assert.Equal(t, "Daily at 03:00", CronDescription("0 3 * * *"))
	assert.Equal(t, "Every 6 hours", CronDescription("0 */6 * * *"))
	assert.Equal(t, "Custom schedule: 5 4 * * 2", CronDescription("5 4 * * 2"))
}

func TestNextRunTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	next, err := NextRunTime("0 3 * * *", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC), *next)

	_, err = NextRunTime("bogus", now)
	assert.Error(t, err)
}

func TestSyncScheduler_StartRegistersEntries(t *testing.T) {
	cfg := config.Sync{Schedule: "0 */6 * * *", CleanupSchedule: "0 3 * * *", HistoryRetentionDays: 30}
	s := NewSyncScheduler(cfg, &fakeQueue{}, fakeSweeper{}, nil)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.True(t, s.IsRunning())
	entries := s.Entries()
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
		assert.NotNil(t, e.Next)
	}
	assert.ElementsMatch(t, []string{"sync_all", "cleanup_history", "sweep_sessions"}, names)
}

func TestSyncScheduler_DisabledSchedules(t *testing.T) {
	s := NewSyncScheduler(config.Sync{}, &fakeQueue{}, nil, nil)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Empty(t, s.Entries())
}

func TestSyncScheduler_InvalidSchedule(t *testing.T) {
	s := NewSyncScheduler(config.Sync{Schedule: "whenever"}, &fakeQueue{}, nil, nil)

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync_all")
	assert.False(t, s.IsRunning())
}

func TestSyncScheduler_RunNow(t *testing.T) {
	queue := &fakeQueue{}
	s := NewSyncScheduler(config.Sync{}, queue, nil, nil)

	id, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "task-1", id)

	require.Len(t, queue.tasks, 1)
	task, ok := queue.tasks[0].(tasks.SyncJobTask)
	require.True(t, ok)
	assert.Equal(t, entities.SyncJobAll, task.Job)
	assert.Equal(t, entities.SyncTriggerSchedule, task.Trigger)
}

func TestSyncScheduler_StopWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSyncScheduler(config.Sync{}, nil, fakeSweeper{}, nil)
	require.NoError(t, s.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}
