package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

// GoogleConfig configures Google ID token verification.
type GoogleConfig struct {
	ClientID string `env:"GOOGLE_CLIENT_ID"`
	Issuer   string `env:"GOOGLE_ISSUER" envDefault:"https://accounts.google.com"`
}

// TokenVerifier is satisfied by *oidc.IDTokenVerifier.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// GoogleVerifier turns a Google ID token into a Verified identity. Signature,
// issuer, expiry and audience are checked by go-oidc against the client id.
type GoogleVerifier struct {
	verifier TokenVerifier
}

// NewGoogleVerifier discovers the issuer's keys and builds a verifier bound
// to cfg.ClientID.
func NewGoogleVerifier(ctx context.Context, cfg GoogleConfig) (*GoogleVerifier, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "https://accounts.google.com"
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, errors.Join(errors.New("identity: failed to init google oidc provider"), err)
	}

	return NewGoogleVerifierWith(provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})), nil
}

// NewGoogleVerifierWith wraps an existing token verifier.
func NewGoogleVerifierWith(v TokenVerifier) *GoogleVerifier {
	return &GoogleVerifier{verifier: v}
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// Verify checks rawIDToken and extracts the email and profile.
func (g *GoogleVerifier) Verify(ctx context.Context, rawIDToken string) (Verified, error) {
	if strings.TrimSpace(rawIDToken) == "" {
		return Verified{}, ErrInvalidIDToken
	}

	tok, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return Verified{}, errors.Join(ErrInvalidIDToken, err)
	}

	var c googleClaims
	if err := tok.Claims(&c); err != nil {
		return Verified{}, errors.Join(ErrInvalidIDToken, err)
	}
	if c.Email == "" || (c.EmailVerified != nil && !*c.EmailVerified) {
		return Verified{}, ErrEmailNotAvailable
	}

	return Verified{
		Email:     c.Email,
		FirstName: c.GivenName,
		LastName:  c.FamilyName,
		AvatarURL: c.Picture,
	}, nil
}

// FacebookUser is the profile object the client obtains from the Facebook SDK.
type FacebookUser struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// Verified maps the profile onto a Verified identity. Accounts without an
// email fall back to the synthetic address "fb_<id>".
func (u FacebookUser) Verified() (Verified, error) {
	email := strings.TrimSpace(u.Email)
	if email == "" {
		id := strings.TrimSpace(u.ID)
		if id == "" {
			return Verified{}, ErrEmailNotAvailable
		}
		email = "fb_" + id
	}

	first, last, _ := strings.Cut(strings.TrimSpace(u.Name), " ")
	return Verified{
		Email:     email,
		FirstName: first,
		LastName:  strings.TrimSpace(last),
		AvatarURL: u.Picture.Data.URL,
	}, nil
}
