package identity

import "errors"

var (
	ErrNotFound           = errors.New("identity: not found")
	ErrConflict           = errors.New("identity: email already exists")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrInvalidEmail       = errors.New("identity: invalid email")
	ErrWeakPassword       = errors.New("identity: password does not meet requirements")
	ErrMissingName        = errors.New("identity: first and last name are required")
	ErrInvalidRole        = errors.New("identity: invalid role")
)

// Federated verification errors
var (
	ErrInvalidIDToken    = errors.New("identity: invalid id token")
	ErrEmailNotAvailable = errors.New("identity: email not available")
	ErrMissingClientID   = errors.New("identity: google client id is required")
)
