package token

import "errors"

var (
	ErrInvalidToken    = errors.New("token: invalid token")
	ErrExpiredToken    = errors.New("token: token expired")
	ErrEmptySecret     = errors.New("token: signing secret is empty")
	ErrEmptyPurpose    = errors.New("token: purpose is empty")
	ErrKeyDerivation   = errors.New("token: failed to derive purpose key")
	ErrNonceGeneration = errors.New("token: failed to generate nonce")
)
