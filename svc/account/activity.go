package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/authflow/pkg/activity"
	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/session"
)

const maxVisitorIDLength = 128

// RecordVisit counts visitorID as active at at (now when zero).
func (s *Service) RecordVisit(ctx context.Context, visitorID string, at time.Time) (time.Time, error) {
	at, err := s.deps.Activity.Touch(ctx, visitorID, at)
	if errors.Is(err, activity.ErrEmptyVisitorID) {
		return time.Time{}, ErrInvalidVisitorID
	}
	return at, classify(err)
}

// RecentActiveCount counts visitors active within window of now.
func (s *Service) RecentActiveCount(ctx context.Context, window time.Duration) (int64, error) {
	n, err := s.deps.Activity.CountRecent(ctx, window)
	return n, classify(err)
}

// ActiveOnDate counts visitors active on the calendar day of date.
func (s *Service) ActiveOnDate(ctx context.Context, date time.Time) (int64, error) {
	n, err := s.deps.Activity.CountOn(ctx, date)
	return n, classify(err)
}

// ActiveSinceDate counts distinct visitors active on date or later.
func (s *Service) ActiveSinceDate(ctx context.Context, date time.Time) (int64, error) {
	n, err := s.deps.Activity.CountSince(ctx, date)
	return n, classify(err)
}

// Visit is the outcome of an activity ping.
type Visit struct {
	VisitorID  string
	LastActive time.Time
}

// MarkActive records a visit, minting a visitor id when the caller has none.
func (s *Service) MarkActive(ctx context.Context, visitorID string) (Visit, error) {
	visitorID, err := normalizeVisitorID(visitorID)
	if err != nil {
		return Visit{}, err
	}
	at, err := s.RecordVisit(ctx, visitorID, time.Time{})
	if err != nil {
		return Visit{}, err
	}
	return Visit{VisitorID: visitorID, LastActive: at}, nil
}

// AnonymousResult is a fresh anonymous session plus the visit it recorded.
type AnonymousResult struct {
	Session *session.Session
	Visit   Visit
}

// StartAnonymous records a visit and issues an anonymous session.
func (s *Service) StartAnonymous(ctx context.Context, visitorID string) (*AnonymousResult, error) {
	visit, err := s.MarkActive(ctx, visitorID)
	if err != nil {
		return nil, err
	}
	sess, err := s.deps.Sessions.CreateAnonymous(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return &AnonymousResult{Session: sess, Visit: visit}, nil
}

// Summary is the admin analytics snapshot.
type Summary struct {
	ActiveRecent    int64     `json:"active_users_recent"`
	ActiveToday     int64     `json:"active_users_today"`
	ActiveThisMonth int64     `json:"active_users_this_month"`
	TotalCustomers  int64     `json:"total_customers"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// AnalyticsSummary runs the window counts concurrently.
func (s *Service) AnalyticsSummary(ctx context.Context) (Summary, error) {
	now := s.deps.Activity.Now()
	sum := Summary{GeneratedAt: now}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sum.ActiveRecent, err = s.deps.Activity.CountRecent(gctx, s.cfg.RecentWindow)
		return err
	})
	g.Go(func() (err error) {
		sum.ActiveToday, err = s.deps.Activity.CountOn(gctx, now)
		return err
	})
	g.Go(func() (err error) {
		sum.ActiveThisMonth, err = s.deps.Activity.CountSince(gctx, s.deps.Activity.MonthStart(now))
		return err
	})
	g.Go(func() (err error) {
		sum.TotalCustomers, err = s.deps.Identities.CountByRole(gctx, identity.RoleCustomer)
		return err
	})
	if err := g.Wait(); err != nil {
		return Summary{}, classify(err)
	}
	return sum, nil
}

func normalizeVisitorID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return uuid.NewString(), nil
	}
	if len(id) > maxVisitorIDLength {
		return "", ErrInvalidVisitorID
	}
	return id, nil
}
