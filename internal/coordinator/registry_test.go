package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawsitivecheck/syncconsole/internal/entities"
)

func newTestRegistry(syncer Syncer, opts ...RegistryOption) *Registry {
	return NewRegistry(func(key string) *Coordinator {
		return New(syncer, &fakeInvalidator{}, WithKey(key))
	}, opts...)
}

func TestRegistry_PerSessionCoordinators(t *testing.T) {
	r := newTestRegistry(&fakeSyncer{})

	a1 := r.For("session-a")
	a2 := r.For("session-a")
	b := r.For("session-b")

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, "session-b", b.Key())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SessionsDoNotBlockEachOther(t *testing.T) {
	syncer := &fakeSyncer{
		result:  &entities.SyncResult{Message: "ok"},
		block:   make(chan struct{}),
		started: make(chan string, 2),
	}
	r := newTestRegistry(syncer)

	require.NoError(t, r.For("a").Trigger(entities.SyncJobProducts, entities.SyncTriggerUI))
	require.NoError(t, r.For("b").Trigger(entities.SyncJobProducts, entities.SyncTriggerUI))
	<-syncer.started
	<-syncer.started

	close(syncer.block)
	r.Wait()
	assert.Len(t, syncer.Calls(), 2)
}

func TestRegistry_GlobalScope(t *testing.T) {
	r := newTestRegistry(&fakeSyncer{}, WithGlobalScope())

	a := r.For("session-a")
	b := r.For("session-b")

	assert.Same(t, a, b)
	assert.Equal(t, GlobalKey, a.Key())
}

func TestRegistry_EmptyKeyUsesShared(t *testing.T) {
	r := newTestRegistry(&fakeSyncer{})
	assert.Equal(t, GlobalKey, r.For("").Key())

	c, ok := r.Lookup("")
	require.True(t, ok)
	assert.Equal(t, GlobalKey, c.Key())
}

func TestRegistry_SweepEvictsIdleOnly(t *testing.T) {
	syncer := &fakeSyncer{
		result:  &entities.SyncResult{Message: "ok"},
		block:   make(chan struct{}),
		started: make(chan string, 1),
	}
	r := newTestRegistry(syncer, WithIdleTTL(time.Hour))

	r.For("idle")
	global := r.For("")
	busy := r.For("busy")
	require.NoError(t, busy.Trigger(entities.SyncJobRecalls, entities.SyncTriggerUI))
	<-syncer.started

	assert.Equal(t, 0, r.Sweep(), "nothing is older than the TTL yet")

	r.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.Equal(t, 1, r.Sweep())

	_, ok := r.Lookup("idle")
	assert.False(t, ok)
	_, ok = r.Lookup("busy")
	assert.True(t, ok, "running coordinators are never evicted")
	kept, ok := r.Lookup(GlobalKey)
	assert.True(t, ok)
	assert.Same(t, global, kept, "queued runs keep using the same global coordinator")

	close(syncer.block)
	busy.Wait()
}

func TestRegistry_SweepDisabled(t *testing.T) {
	r := newTestRegistry(&fakeSyncer{}, WithIdleTTL(0))
	r.For("a")
	r.now = func() time.Time { return time.Now().Add(24 * time.Hour) }

	assert.Equal(t, 0, r.Sweep())
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RunThroughRegistry(t *testing.T) {
	r := newTestRegistry(&fakeSyncer{result: &entities.SyncResult{Message: "Synced"}})

	out, err := r.For("a").Run(context.Background(), entities.SyncJobRecalls, entities.SyncTriggerAPI)
	require.NoError(t, err)
	assert.Equal(t, "Recalls Synchronized", out.Toast.Title)
}
