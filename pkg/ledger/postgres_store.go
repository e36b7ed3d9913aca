package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/authflow/pkg/pg"
)

const entryColumns = `id, user_id, token, consumed, created_at, consumed_at`

// PostgresStore keeps entries in the password_reset_tokens table.
type PostgresStore struct {
	db      pg.Querier
	timeout time.Duration
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithQueryTimeout bounds each statement; zero disables the bound.
func WithQueryTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStore) { s.timeout = d }
}

func NewPostgresStore(db pg.Querier, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PostgresStore) Insert(ctx context.Context, e Entry) error {
	ctx, cancel := pg.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := pg.Conn(ctx, s.db).Exec(ctx, `
		INSERT INTO password_reset_tokens (id, user_id, token, consumed, created_at)
		VALUES ($1, $2, $3, FALSE, $4)
	`, e.ID, e.UserID, e.Token, e.CreatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateToken
		}
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

func (s *PostgresStore) Lookup(ctx context.Context, token string) (Entry, error) {
	ctx, cancel := pg.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := pg.Conn(ctx, s.db).QueryRow(ctx, `SELECT `+entryColumns+` FROM password_reset_tokens WHERE token = $1`, token)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("lookup reset token: %w", err)
	}
	return e, nil
}

// Consume flips the flag with a conditional update; when no row matches it
// distinguishes a missing token from one that was already used.
func (s *PostgresStore) Consume(ctx context.Context, token string, at time.Time) (Entry, error) {
	ctx, cancel := pg.WithTimeout(ctx, s.timeout)
	defer cancel()

	row := pg.Conn(ctx, s.db).QueryRow(ctx, `
		UPDATE password_reset_tokens
		SET consumed = TRUE, consumed_at = $2
		WHERE token = $1 AND consumed = FALSE
		RETURNING `+entryColumns, token, at)
	e, err := scanEntry(row)
	if err == nil {
		return e, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, fmt.Errorf("consume reset token: %w", err)
	}

	var exists bool
	if err := pg.Conn(ctx, s.db).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM password_reset_tokens WHERE token = $1)`, token,
	).Scan(&exists); err != nil {
		return Entry{}, fmt.Errorf("consume reset token: %w", err)
	}
	if exists {
		return Entry{}, ErrAlreadyConsumed
	}
	return Entry{}, ErrNotFound
}

// ConsumeWith runs the conditional update and fn in one transaction; the row
// lock taken by the update serialises concurrent redemptions.
func (s *PostgresStore) ConsumeWith(ctx context.Context, token string, at time.Time, fn ConsumeFunc) (Entry, error) {
	var e Entry
	err := pg.InTx(ctx, s.db, func(ctx context.Context) error {
		var err error
		if e, err = s.Consume(ctx, token, at); err != nil {
			return err
		}
		return fn(ctx, e)
	})
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.UserID, &e.Token, &e.Consumed, &e.CreatedAt, &e.ConsumedAt)
	return e, err
}

var _ Store = (*PostgresStore)(nil)
