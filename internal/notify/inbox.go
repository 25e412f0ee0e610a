package notify

import (
	"sync"
	"time"
)

// DefaultCapacity bounds how many toasts an inbox keeps.
const DefaultCapacity = 50

// Inbox is a bounded, thread-safe toast list owned by one coordinator.
type Inbox struct {
	mu       sync.Mutex
	toasts   []Toast
	capacity int
}

// NewInbox creates an inbox; capacity <= 0 means DefaultCapacity.
func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Inbox{capacity: capacity}
}

// Push appends a toast, dropping the oldest once capacity is reached.
func (in *Inbox) Push(t Toast) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.toasts = append(in.toasts, t)
	if over := len(in.toasts) - in.capacity; over > 0 {
		in.toasts = append([]Toast(nil), in.toasts[over:]...)
	}
}

// Active returns unexpired toasts, newest first, and forgets expired ones.
func (in *Inbox) Active(now time.Time) []Toast {
	in.mu.Lock()
	defer in.mu.Unlock()

	kept := in.toasts[:0]
	for _, t := range in.toasts {
		if !t.Expired(now) {
			kept = append(kept, t)
		}
	}
	in.toasts = kept

	active := make([]Toast, len(kept))
	for i, t := range kept {
		active[len(kept)-1-i] = t
	}
	return active
}

// Dismiss removes a toast by ID. It returns false when no such toast exists.
func (in *Inbox) Dismiss(id string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	for i, t := range in.toasts {
		if t.ID == id {
			in.toasts = append(in.toasts[:i], in.toasts[i+1:]...)
			return true
		}
	}
	return false
}

// size returns the number of stored toasts, expired or not.
func (in *Inbox) size() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.toasts)
}
