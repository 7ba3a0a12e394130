package outbox

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository keeps messages in memory for tests.
type InMemoryRepository struct {
	mu       sync.Mutex
	messages []*Message
	nextID   int64
}

// NewInMemoryRepository creates a new in-memory outbox repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{nextID: 1}
}

func (r *InMemoryRepository) SaveBatch(_ context.Context, msgs []*Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range msgs {
		msg.ID = r.nextID
		r.nextID++
		r.messages = append(r.messages, msg)
	}
	return nil
}

func (r *InMemoryRepository) GetUnpublished(_ context.Context, now time.Time, limit int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*Message
	for _, msg := range r.messages {
		if msg.PublishedAt != nil || msg.DeadLetteredAt != nil {
			continue
		}
		if msg.NextRetryAt != nil && msg.NextRetryAt.After(now) {
			continue
		}
		result = append(result, msg)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (r *InMemoryRepository) MarkPublished(_ context.Context, id int64, at time.Time) error {
	return r.update(id, func(msg *Message) {
		msg.PublishedAt = &at
		msg.DeadLetteredAt = nil
	})
}

func (r *InMemoryRepository) MarkFailed(_ context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	return r.update(id, func(msg *Message) {
		msg.RetryCount++
		msg.LastError = &errMsg
		msg.NextRetryAt = &nextRetryAt
	})
}

func (r *InMemoryRepository) MarkDead(_ context.Context, id int64, reason string, at time.Time) error {
	return r.update(id, func(msg *Message) {
		msg.RetryCount++
		msg.DeadLetteredAt = &at
		msg.DeadLetterReason = &reason
	})
}

func (r *InMemoryRepository) DeleteOld(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.messages[:0]
	var deleted int64
	for _, msg := range r.messages {
		if msg.PublishedAt != nil && msg.PublishedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, msg)
	}
	r.messages = kept
	return deleted, nil
}

// Messages returns a snapshot of all stored messages.
func (r *InMemoryRepository) Messages() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Message(nil), r.messages...)
}

func (r *InMemoryRepository) update(id int64, fn func(*Message)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if msg.ID == id {
			fn(msg)
			return nil
		}
	}
	return nil
}
