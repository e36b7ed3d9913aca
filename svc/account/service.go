package account

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/authflow/pkg/activity"
	"github.com/dmitrymomot/authflow/pkg/email"
	"github.com/dmitrymomot/authflow/pkg/identity"
	"github.com/dmitrymomot/authflow/pkg/ledger"
	"github.com/dmitrymomot/authflow/pkg/logger"
	"github.com/dmitrymomot/authflow/pkg/session"
	"github.com/dmitrymomot/authflow/pkg/token"
)

// IDTokenVerifier turns a provider-issued ID token into a verified identity.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (identity.Verified, error)
}

// Deps are the collaborators the service orchestrates. All are required.
type Deps struct {
	Identities *identity.Service
	Sessions   *session.Manager
	Tokens     *token.Codec
	Ledger     *ledger.Ledger
	Activity   *activity.Aggregator
	Mailer     email.EmailSender
	Messages   *email.Composer
}

func (d Deps) validate() error {
	var errs []error
	if d.Identities == nil {
		errs = append(errs, errors.New("identities is nil"))
	}
	if d.Sessions == nil {
		errs = append(errs, errors.New("sessions is nil"))
	}
	if d.Tokens == nil {
		errs = append(errs, errors.New("tokens is nil"))
	}
	if d.Ledger == nil {
		errs = append(errs, errors.New("ledger is nil"))
	}
	if d.Activity == nil {
		errs = append(errs, errors.New("activity is nil"))
	}
	if d.Mailer == nil {
		errs = append(errs, errors.New("mailer is nil"))
	}
	if d.Messages == nil {
		errs = append(errs, errors.New("messages is nil"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrMissingDependency}, errs...)...)
	}
	return nil
}

// ErrMissingDependency is returned by New when a collaborator is nil.
var ErrMissingDependency = errors.New("account: missing dependency")

// Service is the boundary of the identity, session and activity core.
type Service struct {
	deps   Deps
	cfg    Config
	google IDTokenVerifier
	logger *slog.Logger
}

type Option func(*Service)

// WithConfig replaces the default policy values.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

// WithGoogleVerifier enables Google ID-token login.
func WithGoogleVerifier(v IDTokenVerifier) Option {
	return func(s *Service) {
		s.google = v
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New wires the account service.
func New(deps Deps, opts ...Option) (*Service, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	s := &Service{
		deps:   deps,
		cfg:    DefaultConfig(),
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the active policy values.
func (s *Service) Config() Config {
	return s.cfg
}

func (s *Service) log() *slog.Logger {
	return s.logger.With(logger.Component("account"))
}
