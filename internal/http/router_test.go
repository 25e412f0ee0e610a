package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsitivecheck/syncconsole/internal/coordinator"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
	"github.com/pawsitivecheck/syncconsole/internal/scheduler"
	"github.com/pawsitivecheck/syncconsole/internal/tasks"
)

type fakeQueue struct {
	enqueued []backlite.Task
	status   backlite.TaskStatus
}

func (f *fakeQueue) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	f.enqueued = append(f.enqueued, task)
	return "task-1", nil
}

func (f *fakeQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return f.status, nil
}

type fakeSchedules []scheduler.Entry

func (f fakeSchedules) Entries() []scheduler.Entry {
	return f
}

func TestRouter_Basics(t *testing.T) {
	f := newConsoleFixture(t)

	t.Run("ping", func(t *testing.T) {
		w := f.do(http.MethodGet, "/ping", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "pong")
	})

	t.Run("root redirects to the console", func(t *testing.T) {
		w := f.do(http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/admin/sync", w.Header().Get("Location"))
	})

	t.Run("static assets are embedded", func(t *testing.T) {
		w := f.do(http.MethodGet, "/static/console.css", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), ".toast")
	})

	t.Run("security headers", func(t *testing.T) {
		w := f.do(http.MethodGet, "/ping", nil)
		assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("metrics disabled", func(t *testing.T) {
		w := f.do(http.MethodGet, "/metrics", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("task routes disabled without a queue", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/tasks/sync/all", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRouter_NoAuthSharesGlobalCoordinator(t *testing.T) {
	f := newConsoleFixture(t)

	require.Equal(t, http.StatusAccepted, f.do(http.MethodPost, "/admin/sync/jobs/recalls", jsonHeader).Code)

	coord, ok := f.registry.Lookup(coordinator.GlobalKey)
	require.True(t, ok)
	assert.True(t, coord.State().Running())
	assert.Equal(t, 1, f.registry.Len())
}

func TestRouter_MetricsHandler(t *testing.T) {
	f := newConsoleFixture(t)
	router := NewRouter(RouterConfig{
		Coordinators: f.registry,
		Status:       f.status,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("sync_runs_total 1"))
		}),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sync_runs_total")
}

func TestTasksController(t *testing.T) {
	f := newConsoleFixture(t)
	queue := &fakeQueue{status: backlite.TaskStatusRunning}
	router := NewRouter(RouterConfig{
		Coordinators: f.registry,
		Status:       f.status,
		Tasks:        queue,
		Schedules:    fakeSchedules{{Name: "sync_all", Schedule: "0 3 * * *"}},
	})

	serve := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	t.Run("enqueue sync", func(t *testing.T) {
		w := serve(http.MethodPost, "/api/tasks/sync/feed-nutrition")
		require.Equal(t, http.StatusAccepted, w.Code)
		require.Len(t, queue.enqueued, 1)

		task, ok := queue.enqueued[0].(tasks.SyncJobTask)
		require.True(t, ok)
		assert.Equal(t, entities.SyncJobFeedNutrition, task.Job)
		assert.Equal(t, entities.SyncTriggerAPI, task.Trigger)
		assert.Contains(t, w.Body.String(), "task-1")
	})

	t.Run("unknown job", func(t *testing.T) {
		w := serve(http.MethodPost, "/api/tasks/sync/nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("status", func(t *testing.T) {
		w := serve(http.MethodGet, "/api/tasks/task-1")
		require.Equal(t, http.StatusOK, w.Code)

		var info TaskInfo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
		assert.Equal(t, "running", info.Status)

		queue.status = backlite.TaskStatusNotFound
		assert.Equal(t, http.StatusNotFound, serve(http.MethodGet, "/api/tasks/task-1").Code)
	})

	t.Run("schedules", func(t *testing.T) {
		w := serve(http.MethodGet, "/api/schedules")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "sync_all")
	})
}
