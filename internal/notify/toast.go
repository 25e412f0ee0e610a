// Package notify holds the transient notifications shown after a sync job settles.
package notify

import (
	"time"

	"github.com/google/uuid"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Toast is one transient notification.
type Toast struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Details   []string      `json:"details,omitempty"`
	Variant   Variant       `json:"variant"`
	Duration  time.Duration `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewToast stamps a toast with an ID and creation time.
func NewToast(title, message string, variant Variant, duration time.Duration) Toast {
	return Toast{
		ID:        uuid.NewString(),
		Title:     title,
		Message:   message,
		Variant:   variant,
		Duration:  duration,
		CreatedAt: time.Now(),
	}
}

// ExpiresAt returns when the toast stops being displayed.
func (t Toast) ExpiresAt() time.Time {
	return t.CreatedAt.Add(t.Duration)
}

// Expired reports whether the toast's display duration has passed.
func (t Toast) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt())
}

// DurationMs is the display duration in milliseconds, as the UI expects it.
func (t Toast) DurationMs() int64 {
	return t.Duration.Milliseconds()
}
