package session

import (
	"time"
)

// Role is the coarse trust tier a session carries.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleCustomer  Role = "customer"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleAnonymous, RoleCustomer, RoleAdmin:
		return true
	}
	return false
}

// Profile is the identity snapshot cached in the session at issue time.
type Profile struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Session is the payload stored under an opaque handle.
type Session struct {
	Handle    string    `json:"-"`
	Role      Role      `json:"role"`
	Email     string    `json:"email,omitempty"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is reported by the store on read; it is not part of the payload.
	ExpiresAt time.Time `json:"-"`
}

// Anonymous returns the context used when a request carries no live session.
func Anonymous() *Session {
	return &Session{Role: RoleAnonymous}
}

// IsAnonymous reports whether the session grants no identity.
func (s *Session) IsAnonymous() bool {
	return s == nil || s.Role == RoleAnonymous
}

// IsLive reports whether the session was resolved from the store, as opposed
// to the anonymous fallback.
func (s *Session) IsLive() bool {
	return s != nil && s.Handle != ""
}

// HasIdentity reports whether the session references an identity.
func (s *Session) HasIdentity() bool {
	return s != nil && s.Email != ""
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
