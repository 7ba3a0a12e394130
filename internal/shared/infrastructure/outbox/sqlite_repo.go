package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sharedPersistence "github.com/felixgeelhaar/carecal/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteRepository implements Repository for local mode.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite outbox repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// SaveBatch stores messages in the ambient transaction, or in a transaction
// of its own when there is none.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if info, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		return r.insertAll(ctx, info.Tx, msgs)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.insertAll(ctx, tx, msgs); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteRepository) insertAll(ctx context.Context, tx *sql.Tx, msgs []*Message) error {
	const query = `
		INSERT INTO outbox (
			event_id, aggregate_type, aggregate_id, event_type, routing_key,
			payload, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, msg := range msgs {
		res, err := tx.ExecContext(ctx, query,
			msg.EventID.String(),
			msg.AggregateType,
			msg.AggregateID.String(),
			msg.EventType,
			msg.RoutingKey,
			string(msg.Payload),
			string(msg.Metadata),
			sharedPersistence.SQLiteTime(msg.CreatedAt),
		)
		if err != nil {
			return err
		}
		if msg.ID, err = res.LastInsertId(); err != nil {
			return err
		}
	}
	return nil
}

// GetUnpublished retrieves unpublished messages ordered by creation time.
func (r *SQLiteRepository) GetUnpublished(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	const query = `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
		       payload, metadata, created_at, published_at, next_retry_at, retry_count,
		       last_error, dead_lettered_at, dead_letter_reason
		FROM outbox
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at, id
		LIMIT ?
	`

	rows, err := sharedPersistence.SQLiteExecutor(ctx, r.db).QueryContext(ctx, query, sharedPersistence.SQLiteTime(now), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg, err := scanSQLiteMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkPublished marks a message as successfully published.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := sharedPersistence.SQLiteExecutor(ctx, r.db).ExecContext(ctx,
		`UPDATE outbox SET published_at = ?, dead_lettered_at = NULL WHERE id = ?`,
		sharedPersistence.SQLiteTime(at), id)
	return err
}

// MarkFailed records a publish failure with error message.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := sharedPersistence.SQLiteExecutor(ctx, r.db).ExecContext(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ? WHERE id = ?`,
		errMsg, sharedPersistence.SQLiteTime(nextRetryAt), id)
	return err
}

// MarkDead marks a message as dead-lettered.
func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	_, err := sharedPersistence.SQLiteExecutor(ctx, r.db).ExecContext(ctx,
		`UPDATE outbox SET retry_count = retry_count + 1, dead_lettered_at = ?, dead_letter_reason = ? WHERE id = ?`,
		sharedPersistence.SQLiteTime(at), reason, id)
	return err
}

// DeleteOld removes published messages older than the cutoff.
func (r *SQLiteRepository) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	res, err := sharedPersistence.SQLiteExecutor(ctx, r.db).ExecContext(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		sharedPersistence.SQLiteTime(before))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanSQLiteMessage(rows *sql.Rows) (*Message, error) {
	var (
		msg                              Message
		eventID, aggregateID, createdAt  string
		payload                          string
		metadata, lastError, deadReason  sql.NullString
		publishedAt, nextRetryAt, deadAt sql.NullString
	)
	err := rows.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.EventType, &msg.RoutingKey,
		&payload, &metadata, &createdAt, &publishedAt, &nextRetryAt, &msg.RetryCount,
		&lastError, &deadAt, &deadReason,
	)
	if err != nil {
		return nil, err
	}

	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("outbox %d: event id: %w", msg.ID, err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("outbox %d: aggregate id: %w", msg.ID, err)
	}
	if msg.CreatedAt, err = sharedPersistence.ParseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if msg.PublishedAt, err = sharedPersistence.ParseSQLiteNullTime(publishedAt); err != nil {
		return nil, err
	}
	if msg.NextRetryAt, err = sharedPersistence.ParseSQLiteNullTime(nextRetryAt); err != nil {
		return nil, err
	}
	if msg.DeadLetteredAt, err = sharedPersistence.ParseSQLiteNullTime(deadAt); err != nil {
		return nil, err
	}

	msg.Payload = []byte(payload)
	if metadata.Valid {
		msg.Metadata = []byte(metadata.String)
	}
	if lastError.Valid {
		msg.LastError = &lastError.String
	}
	if deadReason.Valid {
		msg.DeadLetterReason = &deadReason.String
	}
	return &msg, nil
}
