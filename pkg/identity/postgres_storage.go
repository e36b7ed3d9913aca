package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/authflow/pkg/pg"
)

const identityColumns = `id, email, password_hash, role, active, first_name, last_name, avatar_url, created_at, updated_at`

// PostgresStorage keeps identities in the identities table. Email uniqueness
// is enforced by the identities_email_key index.
type PostgresStorage struct {
	db      pg.Querier
	timeout time.Duration
}

// PostgresOption configures a PostgresStorage.
type PostgresOption func(*PostgresStorage)

// WithQueryTimeout bounds each statement; zero disables the bound.
func WithQueryTimeout(d time.Duration) PostgresOption {
	return func(s *PostgresStorage) { s.timeout = d }
}

func NewPostgresStorage(db pg.Querier, opts ...PostgresOption) *PostgresStorage {
	s := &PostgresStorage{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PostgresStorage) Create(ctx context.Context, id *Identity) error {
	ctx, cancel := pg.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := pg.Conn(ctx, s.db).Exec(ctx, `
		INSERT INTO identities (`+identityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, id.ID, id.Email, string(id.PasswordHash), string(id.Role), id.Active,
		id.FirstName, id.LastName, id.AvatarURL, id.CreatedAt, id.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	return s.getOne(ctx, `SELECT `+identityColumns+` FROM identities WHERE id = $1`, id)
}

func (s *PostgresStorage) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	return s.getOne(ctx, `SELECT `+identityColumns+` FROM identities WHERE email = $1`, email)
}

func (s *PostgresStorage) Activate(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, cancel := pg.WithTimeout(ctx, s.timeout)
	defer cancel()

	tag, err := pg.Conn(ctx, s.db).Exec(ctx,
		`UPDATE identities SET active = TRUE, updated_at = NOW() WHERE id = $1 AND active = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("activate identity: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := pg.Conn(ctx, s.db).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM identities WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("activate identity: %w", err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (s *PostgresStorage) SetPasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	ctx, cancel := pg.WithTimeout(ctx, s.timeout)
	defer cancel()

	tag, err := pg.Conn(ctx, s.db).Exec(ctx,
		`UPDATE identities SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, string(hash))
	if err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProfile applies only the non-nil fields in one statement.
func (s *PostgresStorage) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*Identity, error) {
	probe := Identity{}
	update.Apply(&probe)

	return s.getOne(ctx, `
		UPDATE identities SET
			first_name = CASE WHEN $2::boolean THEN $3::text ELSE first_name END,
			last_name  = CASE WHEN $4::boolean THEN $5::text ELSE last_name END,
			avatar_url = CASE WHEN $6::boolean THEN $7::text ELSE avatar_url END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+identityColumns,
		id,
		update.FirstName != nil, probe.FirstName,
		update.LastName != nil, probe.LastName,
		update.AvatarURL != nil, probe.AvatarURL,
	)
}

func (s *PostgresStorage) CountByRole(ctx context.Context, role Role) (int64, error) {
	ctx, cancel := pg.WithTimeout(ctx, s.timeout)
	defer cancel()

	var n int64
	if err := pg.Conn(ctx, s.db).QueryRow(ctx, `SELECT COUNT(*) FROM identities WHERE role = $1`, string(role)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return n, nil
}

func (s *PostgresStorage) getOne(ctx context.Context, query string, args ...any) (*Identity, error) {
	ctx, cancel := pg.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		id   Identity
		hash string
		role string
	)
	err := pg.Conn(ctx, s.db).QueryRow(ctx, query, args...).Scan(
		&id.ID, &id.Email, &hash, &role, &id.Active,
		&id.FirstName, &id.LastName, &id.AvatarURL, &id.CreatedAt, &id.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}
	id.PasswordHash = []byte(hash)
	id.Role = Role(role)
	return &id, nil
}

var _ Storage = (*PostgresStorage)(nil)
