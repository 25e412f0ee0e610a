package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pawsitivecheck/syncconsole/internal/coordinator"
	auditrepo "github.com/pawsitivecheck/syncconsole/internal/database/audit"
	"github.com/pawsitivecheck/syncconsole/internal/database/syncruns"
	"github.com/pawsitivecheck/syncconsole/internal/entities"
	"github.com/pawsitivecheck/syncconsole/internal/statuscache"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// gatedSyncer blocks every call until release is closed.
type gatedSyncer struct {
	mu      sync.Mutex
	release chan struct{}
	result  *entities.SyncResult
	err     error
	calls   []string
}

func newGatedSyncer() *gatedSyncer {
	return &gatedSyncer{
		release: make(chan struct{}),
		result:  &entities.SyncResult{Message: "Synced 12 products"},
	}
}

func (g *gatedSyncer) Sync(ctx context.Context, endpoint string) (*entities.SyncResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, endpoint)
	g.mu.Unlock()

	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.result, g.err
}

func (g *gatedSyncer) Open() {
	close(g.release)
}

type fakeStatus struct {
	mu         sync.Mutex
	snapshot   statuscache.Snapshot
	refreshErr error
	refreshes  int
}

func (f *fakeStatus) Snapshot() statuscache.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

func (f *fakeStatus) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.refreshErr
}

func (f *fakeStatus) Refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

func (f *fakeStatus) Invalidate(ctx context.Context) error {
	return f.Refresh(ctx)
}

func (f *fakeStatus) Interval() time.Duration {
	return 30 * time.Second
}

type fakeHistory struct {
	runs       []entities.SyncRun
	lastFilter syncruns.Filter
	err        error
}

func (f *fakeHistory) List(ctx context.Context, filter syncruns.Filter) ([]entities.SyncRun, int64, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.runs, int64(len(f.runs)), nil
}

func (f *fakeHistory) Latest(ctx context.Context) (map[entities.SyncJobID]entities.SyncRun, error) {
	latest := make(map[entities.SyncJobID]entities.SyncRun)
	for _, run := range f.runs {
		latest[run.Job] = run
	}
	return latest, nil
}

type adminEntry struct {
	action string
	err    error
}

type fakeAudit struct {
	mu     sync.Mutex
	admin  []adminEntry
	events []entities.AuditEvent
	filter auditrepo.Filter
}

func (f *fakeAudit) LogAdmin(userID uint, action, description string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admin = append(f.admin, adminEntry{action: action, err: err})
}

func (f *fakeAudit) GetEvents(filter auditrepo.Filter) ([]entities.AuditEvent, int64, error) {
	f.filter = filter
	return f.events, int64(len(f.events)), nil
}

type consoleFixture struct {
	syncer   *gatedSyncer
	status   *fakeStatus
	history  *fakeHistory
	audit    *fakeAudit
	registry *coordinator.Registry
	router   *gin.Engine
}

func newConsoleFixture(t *testing.T) *consoleFixture {
	t.Helper()

	f := &consoleFixture{
		syncer:  newGatedSyncer(),
		status:  &fakeStatus{},
		history: &fakeHistory{},
		audit:   &fakeAudit{},
	}
	f.registry = coordinator.NewRegistry(func(key string) *coordinator.Coordinator {
		return coordinator.New(f.syncer, f.status, coordinator.WithKey(key))
	})
	f.router = NewRouter(RouterConfig{
		Coordinators: f.registry,
		Status:       f.status,
		History:      f.history,
		Audit:        f.audit,
		Version:      "test",
	})

	t.Cleanup(func() {
		select {
		case <-f.syncer.release:
		default:
			f.syncer.Open()
		}
		f.registry.Wait()
	})
	return f
}

func (f *consoleFixture) do(method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

var (
	jsonHeader = map[string]string{"Accept": "application/json"}
	htmxHeader = map[string]string{"HX-Request": "true"}
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
		wantOK     bool
	}{
		{"defaults", "", 20, 0, true},
		{"explicit", "?limit=5&offset=10", 5, 10, true},
		{"clamped", "?limit=1000", 100, 0, true},
		{"zero limit", "?limit=0", 0, 0, false},
		{"negative offset", "?offset=-1", 0, 0, false},
		{"garbage", "?limit=abc", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)

			limit, offset, ok := parsePagination(c, 20, 100)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				return
			}
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   bool
	}{
		{"api path", "/api/tasks/1", nil, true},
		{"json accept", "/admin/sync/state", jsonHeader, true},
		{"htmx wins", "/api/tasks/1", htmxHeader, false},
		{"browser", "/admin/sync", map[string]string{"Accept": "text/html"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, wantsJSON(c))
		})
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := newPaginatedResponse([]int{1, 2}, 5, 2, 2)
	assert.True(t, resp.HasMore)

	resp = newPaginatedResponse([]int{5}, 5, 2, 4)
	assert.False(t, resp.HasMore)
}

func TestRespondInternalError_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	respondInternalError(c, nopLogger(), errors.New("disk on fire"), "test")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, strings.Contains(w.Body.String(), "disk on fire"))
}

func requireEventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}

func nopLogger() *zap.Logger {
	return zap.NewNop()
}
