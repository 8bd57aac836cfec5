package docstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock, time.Second), mock
}

func TestPostgresStore_List(t *testing.T) {
	store, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{"id", "data"}).
		AddRow("b1", []byte(`{"title":{"stringValue":"Dune"},"quantity":{"integerValue":"3"}}`)).
		AddRow("b2", []byte(`{"title":{"stringValue":"Emma"}}`))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, data")).
		WithArgs("books").
		WillReturnRows(rows)

	docs, err := store.List(context.Background(), "books")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "b1", docs[0].ID)
	assert.Equal(t, "Dune", docs[0].Fields["title"])
	assert.Equal(t, int64(3), docs[0].Fields["quantity"])
	assert.Equal(t, "b2", docs[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT data")).
			WithArgs("users", "u1").
			WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow([]byte(`{"firstName":{"stringValue":"Ada"}}`)))

		doc, err := store.Get(context.Background(), "users", "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", doc.ID)
		assert.Equal(t, "Ada", doc.Fields["firstName"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT data")).
			WithArgs("users", "nobody").
			WillReturnError(pgx.ErrNoRows)

		_, err := store.Get(context.Background(), "users", "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Create(t *testing.T) {
	store, mock := newMockStore(t)
	data, err := marshalFields(Fields{"title": "Dune"})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO documents (collection, id, data)")).
		WithArgs("books", pgxmock.AnyArg(), data).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := store.Create(context.Background(), "books", Fields{"title": "Dune"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Put(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (collection, id) DO UPDATE")).
		WithArgs("users", "u1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := store.Put(context.Background(), "users", "u1", Fields{"role": "admin"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	t.Run("missing row is not an error", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents")).
			WithArgs("books", "gone").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.NoError(t, store.Delete(context.Background(), "books", "gone"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver error propagates", func(t *testing.T) {
		store, mock := newMockStore(t)
		boom := errors.New("connection reset")
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents")).
			WithArgs("books", "b1").
			WillReturnError(boom)

		assert.ErrorIs(t, store.Delete(context.Background(), "books", "b1"), boom)
	})
}
