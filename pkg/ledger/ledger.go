package ledger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authflow/pkg/clock"
	"github.com/dmitrymomot/authflow/pkg/logger"
)

// Entry is a recorded one-time token.
type Entry struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Token      string
	Consumed   bool
	CreatedAt  time.Time
	ConsumedAt *time.Time
}

// ConsumeFunc runs while a token is being consumed. A non-nil error leaves
// the token unconsumed.
type ConsumeFunc func(ctx context.Context, e Entry) error

// Store persists entries. Consume must check and flip the consumed flag in
// one atomic step. ConsumeWith does the same but commits the flip only when
// fn succeeds, with fn's writes in the same unit.
type Store interface {
	Insert(ctx context.Context, e Entry) error
	Lookup(ctx context.Context, token string) (Entry, error)
	Consume(ctx context.Context, token string, at time.Time) (Entry, error)
	ConsumeWith(ctx context.Context, token string, at time.Time, fn ConsumeFunc) (Entry, error)
}

// Ledger tracks one-time tokens.
type Ledger struct {
	store  Store
	clock  clock.Clock
	logger *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the time source for CreatedAt and ConsumedAt.
func WithClock(c clock.Clock) Option {
	return func(l *Ledger) {
		if c != nil {
			l.clock = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) {
		if log != nil {
			l.logger = log
		}
	}
}

// New creates a Ledger over store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		clock:  clock.New(),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record stores token as unconsumed for userID and returns the entry id.
func (l *Ledger) Record(ctx context.Context, userID uuid.UUID, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrEmptyToken
	}

	e := Entry{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		CreatedAt: l.clock.Now(),
	}
	if err := l.store.Insert(ctx, e); err != nil {
		return uuid.Nil, err
	}

	l.logger.DebugContext(ctx, "one-time token recorded",
		logger.Component("ledger"),
		logger.UserID(userID),
	)
	return e.ID, nil
}

// Lookup returns the entry for token without changing it.
func (l *Ledger) Lookup(ctx context.Context, token string) (Entry, error) {
	if token == "" {
		return Entry{}, ErrNotFound
	}
	return l.store.Lookup(ctx, token)
}

// Consume marks token as used. It returns ErrNotFound for unknown tokens and
// ErrAlreadyConsumed when the token was redeemed before, including by a
// concurrent caller.
func (l *Ledger) Consume(ctx context.Context, token string) (Entry, error) {
	if token == "" {
		return Entry{}, ErrNotFound
	}

	e, err := l.store.Consume(ctx, token, l.clock.Now())
	if err != nil {
		if errors.Is(err, ErrAlreadyConsumed) {
			l.logger.WarnContext(ctx, "one-time token replayed", logger.Component("ledger"))
		}
		return Entry{}, err
	}
	return e, nil
}

// ConsumeWith marks token as used together with the effect of fn. If fn fails
// the token stays redeemable and fn's error is returned.
func (l *Ledger) ConsumeWith(ctx context.Context, token string, fn ConsumeFunc) (Entry, error) {
	if token == "" {
		return Entry{}, ErrNotFound
	}
	if fn == nil {
		return l.Consume(ctx, token)
	}

	e, err := l.store.ConsumeWith(ctx, token, l.clock.Now(), fn)
	if err != nil {
		if errors.Is(err, ErrAlreadyConsumed) {
			l.logger.WarnContext(ctx, "one-time token replayed", logger.Component("ledger"))
		}
		return Entry{}, err
	}
	return e, nil
}
