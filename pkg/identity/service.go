package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/authflow/pkg/clock"
	"github.com/dmitrymomot/authflow/pkg/logger"
)

// RegisterInput is the data for a local sign-up.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Service resolves callers to local identities.
type Service struct {
	storage    Storage
	clock      clock.Clock
	bcryptCost int
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// NewService creates an identity service over storage.
func NewService(storage Storage, opts ...Option) *Service {
	s := &Service{
		storage:    storage,
		clock:      clock.New(),
		bcryptCost: bcrypt.DefaultCost,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an inactive customer with a local password.
// Returns ErrConflict when the email is already registered.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Identity, error) {
	email := NormalizeEmail(in.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	first, last := strings.TrimSpace(in.FirstName), strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, ErrMissingName
	}

	hash, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	id := &Identity{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         RoleCustomer,
		FirstName:    first,
		LastName:     last,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.storage.Create(ctx, id); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "identity registered",
		logger.Component("identity"),
		logger.UserID(id.ID),
	)
	return id, nil
}

// AuthenticateLocal checks email and password. Any failure, including an
// unknown email, yields ErrInvalidCredentials; storage errors other than a
// miss are returned as is.
func (s *Service) AuthenticateLocal(ctx context.Context, email, password string) (*Identity, error) {
	id, err := s.storage.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(id.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return id, nil
}

// FindOrCreate returns the identity for a verified email, provisioning an
// active customer with an unusable password on first sight. When a
// concurrent caller wins the insert, the winner's record is returned.
func (s *Service) FindOrCreate(ctx context.Context, v Verified) (*Identity, bool, error) {
	email := NormalizeEmail(v.Email)
	if email == "" {
		return nil, false, ErrEmailNotAvailable
	}

	existing, err := s.storage.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	secret, err := unusablePassword()
	if err != nil {
		return nil, false, fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := hashPassword(secret, s.bcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock.Now()
	id := &Identity{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         RoleCustomer,
		Active:       true,
		FirstName:    strings.TrimSpace(v.FirstName),
		LastName:     strings.TrimSpace(v.LastName),
		AvatarURL:    strings.TrimSpace(v.AvatarURL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.storage.Create(ctx, id)
	if errors.Is(err, ErrConflict) {
		s.logger.DebugContext(ctx, "lost identity provisioning race, re-reading",
			logger.Component("identity"),
		)
		winner, err := s.storage.GetByEmail(ctx, email)
		if err != nil {
			return nil, false, err
		}
		return winner, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.logger.InfoContext(ctx, "federated identity provisioned",
		logger.Component("identity"),
		logger.UserID(id.ID),
	)
	return id, true, nil
}

// Activate marks the identity for email active. It reports false when the
// account was already active.
func (s *Service) Activate(ctx context.Context, email string) (*Identity, bool, error) {
	id, err := s.storage.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, false, err
	}
	if id.Active {
		return id, false, nil
	}

	changed, err := s.storage.Activate(ctx, id.ID)
	if err != nil {
		return nil, false, err
	}
	id.Active = true
	return id, changed, nil
}

// SetPassword replaces the password after checking the strong policy.
func (s *Service) SetPassword(ctx context.Context, id uuid.UUID, password string) error {
	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	return s.SetPasswordHash(ctx, id, hash)
}

// HashPassword checks the strong policy and returns the bcrypt hash, so the
// slow hashing can happen before a transaction is opened.
func (s *Service) HashPassword(password string) ([]byte, error) {
	if err := ValidateStrongPassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

// SetPasswordHash stores a hash produced by HashPassword.
func (s *Service) SetPasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	return s.storage.SetPasswordHash(ctx, id, hash)
}

// UpdateProfile applies a partial profile change. Names may not be blanked.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) (*Identity, error) {
	if (update.FirstName != nil && strings.TrimSpace(*update.FirstName) == "") ||
		(update.LastName != nil && strings.TrimSpace(*update.LastName) == "") {
		return nil, ErrMissingName
	}
	return s.storage.UpdateProfile(ctx, id, update)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	return s.storage.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Identity, error) {
	return s.storage.GetByID(ctx, id)
}

func (s *Service) CountByRole(ctx context.Context, role Role) (int64, error) {
	if !role.Valid() {
		return 0, ErrInvalidRole
	}
	return s.storage.CountByRole(ctx, role)
}
