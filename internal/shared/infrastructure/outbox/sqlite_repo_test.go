package outbox

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/carecal/internal/shared/domain"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/carecal/internal/shared/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openSQLite(t *testing.T) *sqlite.Connection {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "outbox.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.Migrate(ctx))
	return conn.(*sqlite.Connection)
}

func TestSQLiteRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	repo := NewSQLiteRepository(conn.DB())

	stageNotes(t, repo, "a", "b")

	pending, err := repo.GetUnpublished(ctx, testNow, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "notes.note.added", pending[0].RoutingKey)
	assert.JSONEq(t, `{"note":"a"}`, string(pending[0].Payload))
	assert.True(t, pending[0].CreatedAt.Equal(testNow))

	require.NoError(t, repo.MarkPublished(ctx, pending[0].ID, testNow))
	require.NoError(t, repo.MarkFailed(ctx, pending[1].ID, "broker down", testNow.Add(time.Minute)))

	pending, err = repo.GetUnpublished(ctx, testNow, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	pending, err = repo.GetUnpublished(ctx, testNow.Add(time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].RetryCount)
	require.NotNil(t, pending[0].LastError)
	assert.Equal(t, "broker down", *pending[0].LastError)

	require.NoError(t, repo.MarkDead(ctx, pending[0].ID, "gave up", testNow))
	pending, err = repo.GetUnpublished(ctx, testNow.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	deleted, err := repo.DeleteOld(ctx, testNow.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestSQLiteRepository_SaveBatchJoinsUnitOfWork(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	repo := NewSQLiteRepository(conn.DB())
	uow := persistence.NewSQLiteUnitOfWork(conn.DB())

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, Stage(txCtx, repo, newNotebook("rolled back"), domain.EventMetadata{}))
	require.NoError(t, uow.Rollback(txCtx))

	pending, err := repo.GetUnpublished(ctx, testNow, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
