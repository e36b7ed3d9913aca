// Package activity counts unique visitors per calendar day.
//
// Every signal upserts one (day, visitor) record and bumps its last-updated
// instant to the latest seen value. Stores must do this as a single atomic
// insert-or-update so concurrent first touches collapse into one record.
package activity

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/authflow/pkg/clock"
	"github.com/dmitrymomot/authflow/pkg/logger"
)

// Store persists daily activity records.
type Store interface {
	// Upsert inserts (day, visitorID) with lastUpdated=at, or raises an
	// existing record's lastUpdated to max(existing, at).
	Upsert(ctx context.Context, day time.Time, visitorID string, at time.Time) error

	// CountUpdatedSince counts visitors whose lastUpdated >= since.
	CountUpdatedSince(ctx context.Context, since time.Time) (int64, error)

	// CountOnDay counts visitors recorded for day.
	CountOnDay(ctx context.Context, day time.Time) (int64, error)

	// CountSinceDay counts distinct visitors recorded on day or later.
	CountSinceDay(ctx context.Context, day time.Time) (int64, error)
}

// Aggregator records visits and answers windowed unique-visitor counts.
type Aggregator struct {
	store    Store
	clock    clock.Clock
	location *time.Location
	logger   *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

func WithClock(c clock.Clock) Option {
	return func(a *Aggregator) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithLocation sets the time zone that defines calendar days. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.location = loc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Aggregator over store.
func New(store Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:    store,
		clock:    clock.New(),
		location: time.UTC,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Now returns the aggregator's current instant.
func (a *Aggregator) Now() time.Time {
	return a.clock.Now()
}

// Day truncates t to midnight of its calendar day in the aggregator's zone.
func (a *Aggregator) Day(t time.Time) time.Time {
	t = t.In(a.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.location)
}

// MonthStart returns the first day of t's month.
func (a *Aggregator) MonthStart(t time.Time) time.Time {
	t = t.In(a.location)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, a.location)
}

// Touch records activity for visitorID at the given instant; a zero at means
// now. It returns the instant recorded.
func (a *Aggregator) Touch(ctx context.Context, visitorID string, at time.Time) (time.Time, error) {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return time.Time{}, ErrEmptyVisitorID
	}
	if at.IsZero() {
		at = a.clock.Now()
	}

	if err := a.store.Upsert(ctx, a.Day(at), visitorID, at); err != nil {
		a.logger.ErrorContext(ctx, "failed to record activity",
			logger.Component("activity"),
			logger.VisitorID(visitorID),
			logger.Error(err),
		)
		return time.Time{}, err
	}
	return at, nil
}

// CountRecent counts visitors active within window of now.
func (a *Aggregator) CountRecent(ctx context.Context, window time.Duration) (int64, error) {
	if window <= 0 {
		return 0, ErrInvalidWindow
	}
	return a.store.CountUpdatedSince(ctx, a.clock.Now().Add(-window))
}

// CountOn counts visitors recorded on the calendar day of date.
func (a *Aggregator) CountOn(ctx context.Context, date time.Time) (int64, error) {
	return a.store.CountOnDay(ctx, a.Day(date))
}

// CountSince counts distinct visitors recorded on the day of date or later.
func (a *Aggregator) CountSince(ctx context.Context, date time.Time) (int64, error) {
	return a.store.CountSinceDay(ctx, a.Day(date))
}
