package domain

import "time"

// DefaultMaxWindowSpan caps how far a single listing may look.
const DefaultMaxWindowSpan = 2 * 366 * 24 * time.Hour

// Window is the half-open viewing range [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// NewWindow validates a caller supplied window. A missing, empty or
// oversized window is rejected rather than clipped.
func NewWindow(from, to time.Time, maxSpan time.Duration) (Window, error) {
	w := Window{From: from, To: to}
	return w, w.Validate(maxSpan)
}

// Validate checks the window against maxSpan. A non-positive maxSpan
// falls back to DefaultMaxWindowSpan.
func (w Window) Validate(maxSpan time.Duration) error {
	if w.From.IsZero() || w.To.IsZero() {
		return ErrWindowRequired
	}
	if !w.To.After(w.From) {
		return ErrWindowNotPositive
	}
	if maxSpan <= 0 {
		maxSpan = DefaultMaxWindowSpan
	}
	if w.To.Sub(w.From) > maxSpan {
		return ErrWindowTooLarge
	}
	return nil
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// Span is the window length.
func (w Window) Span() time.Duration {
	return w.To.Sub(w.From)
}
