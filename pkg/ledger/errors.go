package ledger

import "errors"

var (
	ErrNotFound        = errors.New("ledger: token not found")
	ErrAlreadyConsumed = errors.New("ledger: token already consumed")
	ErrEmptyToken      = errors.New("ledger: empty token")
	ErrDuplicateToken  = errors.New("ledger: token already recorded")
)
