package ledger_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/authflow/pkg/clock"
	"github.com/dmitrymomot/authflow/pkg/ledger"
)

func runLedgerContract(t *testing.T, newStore func(t *testing.T) (ledger.Store, uuid.UUID)) {
	t.Helper()

	t.Run("record then consume once", func(t *testing.T) {
		store, userID := newStore(t)
		fc := clock.NewFake(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
		l := ledger.New(store, ledger.WithClock(fc))
		ctx := context.Background()
		tok := "tok-" + uuid.NewString()

		id, err := l.Record(ctx, userID, tok)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)

		e, err := l.Lookup(ctx, tok)
		require.NoError(t, err)
		assert.False(t, e.Consumed)
		assert.Equal(t, userID, e.UserID)

		fc.Advance(time.Minute)
		e, err = l.Consume(ctx, tok)
		require.NoError(t, err)
		assert.True(t, e.Consumed)
		assert.Equal(t, id, e.ID)
		assert.Equal(t, userID, e.UserID)
		require.NotNil(t, e.ConsumedAt)

		_, err = l.Consume(ctx, tok)
		assert.ErrorIs(t, err, ledger.ErrAlreadyConsumed)
	})

	t.Run("unknown token", func(t *testing.T) {
		store, _ := newStore(t)
		l := ledger.New(store)

		_, err := l.Consume(context.Background(), "tok-"+uuid.NewString())
		assert.ErrorIs(t, err, ledger.ErrNotFound)

		_, err = l.Consume(context.Background(), "")
		assert.ErrorIs(t, err, ledger.ErrNotFound)

		_, err = l.Lookup(context.Background(), "tok-"+uuid.NewString())
		assert.ErrorIs(t, err, ledger.ErrNotFound)
	})

	t.Run("duplicate record", func(t *testing.T) {
		store, userID := newStore(t)
		l := ledger.New(store)
		tok := "tok-" + uuid.NewString()

		_, err := l.Record(context.Background(), userID, tok)
		require.NoError(t, err)
		_, err = l.Record(context.Background(), userID, tok)
		assert.ErrorIs(t, err, ledger.ErrDuplicateToken)

		_, err = l.Record(context.Background(), userID, "")
		assert.ErrorIs(t, err, ledger.ErrEmptyToken)
	})

	t.Run("concurrent consume has a single winner", func(t *testing.T) {
		store, userID := newStore(t)
		l := ledger.New(store)
		ctx := context.Background()
		tok := "tok-" + uuid.NewString()

		_, err := l.Record(ctx, userID, tok)
		require.NoError(t, err)

		const workers = 16
		var wins, replays atomic.Int32
		var g errgroup.Group
		for range workers {
			g.Go(func() error {
				_, err := l.Consume(ctx, tok)
				switch {
				case err == nil:
					wins.Add(1)
				case errors.Is(err, ledger.ErrAlreadyConsumed):
					replays.Add(1)
				default:
					return err
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())

		assert.Equal(t, int32(1), wins.Load())
		assert.Equal(t, int32(workers-1), replays.Load())
	})

	t.Run("consume with failing effect keeps the token", func(t *testing.T) {
		store, userID := newStore(t)
		l := ledger.New(store)
		ctx := context.Background()
		tok := "tok-" + uuid.NewString()

		_, err := l.Record(ctx, userID, tok)
		require.NoError(t, err)

		_, err = l.ConsumeWith(ctx, tok, func(context.Context, ledger.Entry) error {
			return context.DeadlineExceeded
		})
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		e, err := l.Lookup(ctx, tok)
		require.NoError(t, err)
		assert.False(t, e.Consumed)

		var seen ledger.Entry
		e, err = l.ConsumeWith(ctx, tok, func(_ context.Context, e ledger.Entry) error {
			seen = e
			return nil
		})
		require.NoError(t, err)
		assert.True(t, e.Consumed)
		assert.Equal(t, userID, seen.UserID)

		_, err = l.ConsumeWith(ctx, tok, func(context.Context, ledger.Entry) error {
			t.Fatal("effect must not run for a consumed token")
			return nil
		})
		assert.ErrorIs(t, err, ledger.ErrAlreadyConsumed)
	})

	t.Run("consume with has a single winner", func(t *testing.T) {
		store, userID := newStore(t)
		l := ledger.New(store)
		ctx := context.Background()
		tok := "tok-" + uuid.NewString()

		_, err := l.Record(ctx, userID, tok)
		require.NoError(t, err)

		const workers = 8
		var effects, replays atomic.Int32
		var g errgroup.Group
		for range workers {
			g.Go(func() error {
				_, err := l.ConsumeWith(ctx, tok, func(context.Context, ledger.Entry) error {
					effects.Add(1)
					return nil
				})
				if errors.Is(err, ledger.ErrAlreadyConsumed) {
					replays.Add(1)
					return nil
				}
				return err
			})
		}
		require.NoError(t, g.Wait())

		assert.Equal(t, int32(1), effects.Load())
		assert.Equal(t, int32(workers-1), replays.Load())
	})
}

func TestLedger_MemoryStore(t *testing.T) {
	t.Parallel()

	runLedgerContract(t, func(*testing.T) (ledger.Store, uuid.UUID) {
		return ledger.NewMemoryStore(), uuid.New()
	})
}
