package identity

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by PostgresAccounts.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const uniqueViolation = "23505"

var (
	psql           = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	accountColumns = []string{"uid", "email", "password_hash", "created_at"}
)

type PostgresAccounts struct {
	db      DB
	timeout time.Duration
}

func NewPostgresAccounts(db DB, timeout time.Duration) *PostgresAccounts {
	return &PostgresAccounts{db: db, timeout: timeout}
}

func (r *PostgresAccounts) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresAccounts) Create(ctx context.Context, a Account) error {
	query, args, err := psql.Insert("accounts").
		Columns(accountColumns...).
		Values(a.UID, normalizeEmail(a.Email), a.PasswordHash, a.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if _, err := r.db.Exec(timeoutCtx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAccountExists
		}
		return err
	}
	return nil
}

func (r *PostgresAccounts) GetByEmail(ctx context.Context, email string) (Account, error) {
	query, args, err := psql.Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"email": normalizeEmail(email)}).
		Limit(1).
		ToSql()
	if err != nil {
		return Account{}, err
	}
	var a Account
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err = r.db.QueryRow(timeoutCtx, query, args...).Scan(&a.UID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}
