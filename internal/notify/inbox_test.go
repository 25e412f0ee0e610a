package notify

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToast_Expired(t *testing.T) {
	toast := NewToast("Products Synchronized", "Synced 1200 products", VariantDefault, 5*time.Second)

	assert.NotEmpty(t, toast.ID)
	assert.False(t, toast.Expired(toast.CreatedAt))
	assert.False(t, toast.Expired(toast.CreatedAt.Add(4999*time.Millisecond)))
	assert.True(t, toast.Expired(toast.CreatedAt.Add(5*time.Second)))
	assert.Equal(t, int64(5000), toast.DurationMs())
}

func TestInbox_ActiveNewestFirst(t *testing.T) {
	inbox := NewInbox(0)
	base := time.Now()

	first := Toast{ID: "a", Duration: time.Minute, CreatedAt: base}
	second := Toast{ID: "b", Duration: time.Minute, CreatedAt: base.Add(time.Second)}
	inbox.Push(first)
	inbox.Push(second)

	active := inbox.Active(base.Add(2 * time.Second))
	require.Len(t, active, 2)
	assert.Equal(t, "b", active[0].ID)
	assert.Equal(t, "a", active[1].ID)
}

func TestInbox_ActiveDropsExpired(t *testing.T) {
	inbox := NewInbox(0)
	base := time.Now()

	inbox.Push(Toast{ID: "short", Duration: 5 * time.Second, CreatedAt: base})
	inbox.Push(Toast{ID: "long", Duration: 8 * time.Second, CreatedAt: base})

	active := inbox.Active(base.Add(6 * time.Second))
	require.Len(t, active, 1)
	assert.Equal(t, "long", active[0].ID)
	assert.Equal(t, 1, inbox.size())
}

func TestInbox_Dismiss(t *testing.T) {
	inbox := NewInbox(0)
	inbox.Push(Toast{ID: "a", Duration: time.Minute, CreatedAt: time.Now()})

	assert.True(t, inbox.Dismiss("a"))
	assert.False(t, inbox.Dismiss("a"))
	assert.Equal(t, 0, inbox.size())
}

func TestInbox_Capacity(t *testing.T) {
	inbox := NewInbox(3)
	for i := 0; i < 5; i++ {
		inbox.Push(Toast{ID: fmt.Sprintf("t%d", i), Duration: time.Minute, CreatedAt: time.Now()})
	}

	active := inbox.Active(time.Now())
	require.Len(t, active, 3)
	assert.Equal(t, "t4", active[0].ID)
	assert.Equal(t, "t2", active[2].ID)
}

func TestInbox_ConcurrentPush(t *testing.T) {
	inbox := NewInbox(1000)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inbox.Push(NewToast("t", "m", VariantDefault, time.Minute))
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, inbox.size())
}
