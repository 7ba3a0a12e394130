package outbox

import (
	"context"
	"time"
)

// Repository defines the interface for outbox persistence.
type Repository interface {
	// SaveBatch stores messages, joining the transaction in ctx when present.
	SaveBatch(ctx context.Context, msgs []*Message) error

	// GetUnpublished returns messages due for delivery at now, oldest first.
	GetUnpublished(ctx context.Context, now time.Time, limit int) ([]*Message, error)

	// MarkPublished marks a message as successfully published.
	MarkPublished(ctx context.Context, id int64, at time.Time) error

	// MarkFailed records a publish failure and schedules the next attempt.
	MarkFailed(ctx context.Context, id int64, err string, nextRetryAt time.Time) error

	// MarkDead marks a message as dead-lettered.
	MarkDead(ctx context.Context, id int64, reason string, at time.Time) error

	// DeleteOld removes messages published before the cutoff.
	DeleteOld(ctx context.Context, before time.Time) (int64, error)
}
