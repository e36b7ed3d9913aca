package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/authflow/pkg/pg"
)

// PostgresStore keeps records in the daily_activity table.
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

func (s *PostgresStore) Upsert(ctx context.Context, day time.Time, visitorID string, at time.Time) error {
	ctx, cancel := pg.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.Exec(ctx, `
		INSERT INTO daily_activity (day, visitor_id, last_updated)
		VALUES ($1, $2, $3)
		ON CONFLICT (day, visitor_id)
		DO UPDATE SET last_updated = GREATEST(daily_activity.last_updated, EXCLUDED.last_updated)
	`, dateOnly(day), visitorID, at)
	if err != nil {
		return fmt.Errorf("upsert daily activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountUpdatedSince(ctx context.Context, since time.Time) (int64, error) {
	return s.count(ctx, `SELECT COUNT(DISTINCT visitor_id) FROM daily_activity WHERE last_updated >= $1`, since)
}

func (s *PostgresStore) CountOnDay(ctx context.Context, day time.Time) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM daily_activity WHERE day = $1`, dateOnly(day))
}

func (s *PostgresStore) CountSinceDay(ctx context.Context, day time.Time) (int64, error) {
	return s.count(ctx, `SELECT COUNT(DISTINCT visitor_id) FROM daily_activity WHERE day >= $1`, dateOnly(day))
}

func (s *PostgresStore) count(ctx context.Context, query string, arg any) (int64, error) {
	ctx, cancel := pg.WithTimeout(ctx, s.timeout)
	defer cancel()

	var n int64
	if err := s.db.QueryRow(ctx, query, arg).Scan(&n); err != nil {
		return 0, fmt.Errorf("count daily activity: %w", err)
	}
	return n, nil
}

// dateOnly strips the zone so the DATE parameter matches the calendar day the
// aggregator computed.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var _ Store = (*PostgresStore)(nil)
