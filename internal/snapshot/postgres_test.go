package snapshot

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestPostgresStoreGet(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)

	mock.ExpectQuery(`SELECT payload FROM snapshots WHERE key=\$1`).
		WithArgs("workout").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow([]byte(`[]`)))

	value, err := store.Get(context.Background(), "workout")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(value))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetMissing(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)

	mock.ExpectQuery(`SELECT payload FROM snapshots`).
		WithArgs("workout").
		WillReturnError(pgx.ErrNoRows)

	value, err := store.Get(context.Background(), "workout")
	require.NoError(t, err)
	require.Nil(t, value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSetAndDelete(t *testing.T) {
	mock := newMock(t)
	store := NewPostgresStore(mock)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS snapshots`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`INSERT INTO snapshots`).
		WithArgs("workout", []byte(`[1]`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM snapshots WHERE key=\$1`).
		WithArgs("workout").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	ctx := context.Background()
	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.Set(ctx, "workout", []byte(`[1]`)))
	require.NoError(t, store.Delete(ctx, "workout"))
	require.NoError(t, mock.ExpectationsWereMet())
}
