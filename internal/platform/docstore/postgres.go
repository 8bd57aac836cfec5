package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by the PostgreSQL adapters.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore keeps every collection in the documents table (see
// db/migrations). Field values are stored as typed-value JSONB.
type PostgresStore struct {
	db      DB
	timeout time.Duration
}

func NewPostgresStore(db DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{db: db, timeout: timeout}
}

func (r *PostgresStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresStore) List(ctx context.Context, collection string) ([]Document, error) {
	const query = `
	SELECT id, data
	FROM documents
	WHERE collection = $1
	ORDER BY created_at, id
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Document{}
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		fields, err := unmarshalFields(data)
		if err != nil {
			return nil, fmt.Errorf("document %s/%s: %w", collection, id, err)
		}
		out = append(out, Document{ID: id, Fields: fields})
	}
	return out, rows.Err()
}

func (r *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	const query = `
	SELECT data
	FROM documents
	WHERE collection = $1 AND id = $2
	LIMIT 1
	`
	var data []byte
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, collection, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	fields, err := unmarshalFields(data)
	if err != nil {
		return Document{}, fmt.Errorf("document %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Fields: fields}, nil
}

func (r *PostgresStore) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	const query = `
	INSERT INTO documents (collection, id, data)
	VALUES ($1, $2, $3)
	`
	data, err := marshalFields(fields)
	if err != nil {
		return "", err
	}
	id := uuid.New().String()
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.Exec(timeoutCtx, query, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (r *PostgresStore) Put(ctx context.Context, collection, id string, fields Fields) error {
	const query = `
	INSERT INTO documents (collection, id, data)
	VALUES ($1, $2, $3)
	ON CONFLICT (collection, id) DO UPDATE SET
		data = EXCLUDED.data,
		updated_at = now()
	`
	data, err := marshalFields(fields)
	if err != nil {
		return err
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err = r.db.Exec(timeoutCtx, query, collection, id, data)
	return err
}

func (r *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	const query = `DELETE FROM documents WHERE collection = $1 AND id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, query, collection, id)
	return err
}

func marshalFields(fields Fields) ([]byte, error) {
	encoded, err := encodeFields(fields)
	if err != nil {
		return nil, err
	}
	return json.Marshal(encoded)
}

func unmarshalFields(data []byte) (Fields, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return decodeFields(raw)
}
