package outbox

import (
	"context"
	"time"

	sharedPersistence "github.com/felixgeelhaar/carecal/internal/shared/infrastructure/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresInsert = `
	INSERT INTO outbox (
		event_id, aggregate_type, aggregate_id, event_type, routing_key,
		payload, metadata, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
`

const postgresSelectColumns = `
	SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
	       payload, metadata, created_at, published_at, next_retry_at, retry_count,
	       last_error, dead_lettered_at, dead_letter_reason
	FROM outbox
`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL outbox repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveBatch stores messages in the ambient transaction, or in a transaction
// of its own when there is none.
func (r *PostgresRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if info, ok := sharedPersistence.TxInfoFromContext(ctx); ok {
		return insertAll(ctx, info.Tx, msgs)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := insertAll(ctx, tx, msgs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertAll(ctx context.Context, tx pgx.Tx, msgs []*Message) error {
	for _, msg := range msgs {
		err := tx.QueryRow(ctx, postgresInsert,
			msg.EventID,
			msg.AggregateType,
			msg.AggregateID,
			msg.EventType,
			msg.RoutingKey,
			msg.Payload,
			msg.Metadata,
			msg.CreatedAt,
		).Scan(&msg.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetUnpublished retrieves unpublished messages ordered by creation time.
func (r *PostgresRepository) GetUnpublished(ctx context.Context, now time.Time, limit int) ([]*Message, error) {
	query := postgresSelectColumns + `
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= $1)
		ORDER BY created_at, id
		LIMIT $2
	`

	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPostgresMessages(rows)
}

// MarkPublished marks a message as successfully published.
func (r *PostgresRepository) MarkPublished(ctx context.Context, id int64, at time.Time) error {
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx,
		`UPDATE outbox SET published_at = $2, dead_lettered_at = NULL WHERE id = $1`, id, at)
	return err
}

// MarkFailed records a publish failure with error message.
func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	query := `
		UPDATE outbox
		SET retry_count = retry_count + 1,
			last_error = $2,
			next_retry_at = $3
		WHERE id = $1
	`
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, query, id, errMsg, nextRetryAt)
	return err
}

// MarkDead marks a message as dead-lettered.
func (r *PostgresRepository) MarkDead(ctx context.Context, id int64, reason string, at time.Time) error {
	query := `
		UPDATE outbox
		SET retry_count = retry_count + 1,
			dead_lettered_at = $3,
			dead_letter_reason = $2
		WHERE id = $1
	`
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, query, id, reason, at)
	return err
}

// DeleteOld removes published messages older than the cutoff.
func (r *PostgresRepository) DeleteOld(ctx context.Context, before time.Time) (int64, error) {
	result, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func scanPostgresMessages(rows pgx.Rows) ([]*Message, error) {
	var messages []*Message

	for rows.Next() {
		var msg Message
		err := rows.Scan(
			&msg.ID,
			&msg.EventID,
			&msg.AggregateType,
			&msg.AggregateID,
			&msg.EventType,
			&msg.RoutingKey,
			&msg.Payload,
			&msg.Metadata,
			&msg.CreatedAt,
			&msg.PublishedAt,
			&msg.NextRetryAt,
			&msg.RetryCount,
			&msg.LastError,
			&msg.DeadLetteredAt,
			&msg.DeadLetterReason,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}
