package activity

import "errors"

var (
	ErrEmptyVisitorID = errors.New("activity: empty visitor id")
	ErrInvalidWindow  = errors.New("activity: window must be positive")
)
