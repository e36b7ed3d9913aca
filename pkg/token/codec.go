package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/dmitrymomot/authflow/pkg/clock"
)

// Purposes used by the application. Any non-empty string is accepted.
const (
	PurposeEmailConfirm  = "email-confirm"
	PurposePasswordReset = "password-reset"
)

const (
	keySize   = 32
	nonceSize = 12
)

// payload carries a random nonce so two tokens for the same subject issued
// at the same instant still differ. IssuedAt is in Unix milliseconds.
type payload struct {
	Subject  string `json:"sub"`
	IssuedAt int64  `json:"iat"`
	Nonce    string `json:"jti"`
}

// Codec signs and verifies purpose-scoped tokens.
type Codec struct {
	secret []byte
	clock  clock.Clock

	mu   sync.RWMutex
	keys map[string][]byte
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock sets the time source used for issuance and age checks.
func WithClock(c clock.Clock) Option {
	return func(cd *Codec) {
		if c != nil {
			cd.clock = c
		}
	}
}

// NewCodec creates a codec bound to secret.
func NewCodec(secret string, opts ...Option) (*Codec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	c := &Codec{
		secret: []byte(secret),
		clock:  clock.New(),
		keys:   make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig creates a codec from Config.
func NewFromConfig(cfg Config, opts ...Option) (*Codec, error) {
	return NewCodec(cfg.Secret, opts...)
}

// Issue returns a token binding subject to the current instant under purpose.
func (c *Codec) Issue(purpose, subject string) (string, error) {
	if purpose == "" {
		return "", ErrEmptyPurpose
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", errors.Join(ErrNonceGeneration, err)
	}
	data, err := json.Marshal(payload{
		Subject:  subject,
		IssuedAt: c.clock.Now().UnixMilli(),
		Nonce:    base64.RawURLEncoding.EncodeToString(nonce),
	})
	if err != nil {
		return "", err
	}

	sig, err := c.sign(purpose, data)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(data) + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Verify checks the signature under purpose and rejects tokens older than
// maxAge. A non-positive maxAge disables the age check.
// Returns the embedded subject.
func (c *Codec) Verify(purpose, tok string, maxAge time.Duration) (string, error) {
	if purpose == "" {
		return "", ErrEmptyPurpose
	}

	dataEnc, sigEnc, ok := strings.Cut(tok, ".")
	if !ok || dataEnc == "" || sigEnc == "" || strings.Contains(sigEnc, ".") {
		return "", ErrInvalidToken
	}

	data, err := base64.RawURLEncoding.DecodeString(dataEnc)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigEnc)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}

	expected, err := c.sign(purpose, data)
	if err != nil {
		return "", err
	}
	if subtle.ConstantTimeCompare(sig, expected) != 1 {
		return "", ErrInvalidToken
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}

	if maxAge > 0 {
		age := c.clock.Now().Sub(time.UnixMilli(p.IssuedAt))
		if age > maxAge {
			return "", ErrExpiredToken
		}
	}

	return p.Subject, nil
}

func (c *Codec) sign(purpose string, data []byte) ([]byte, error) {
	key, err := c.purposeKey(purpose)
	if err != nil {
		return nil, err
	}
	h := hmac.New(sha256.New, key)
	h.Write([]byte(purpose))
	h.Write([]byte{0})
	h.Write(data)
	return h.Sum(nil), nil
}

// purposeKey derives and caches the signing key for purpose.
func (c *Codec) purposeKey(purpose string) ([]byte, error) {
	c.mu.RLock()
	key, ok := c.keys[purpose]
	c.mu.RUnlock()
	if ok {
		return key, nil
	}

	key = make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, c.secret, nil, []byte(purpose)), key); err != nil {
		return nil, errors.Join(ErrKeyDerivation, err)
	}

	c.mu.Lock()
	c.keys[purpose] = key
	c.mu.Unlock()
	return key, nil
}
