package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the stored tier of an identity. Anonymous callers never have one.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Identity is a local account record.
type Identity struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	Role         Role
	Active       bool
	FirstName    string
	LastName     string
	AvatarURL    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Verified is what an external verifier vouches for: an email plus profile
// attributes.
type Verified struct {
	Email     string
	FirstName string
	LastName  string
	AvatarURL string
}

// ProfileUpdate carries optional profile changes; nil fields are left as is.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	AvatarURL *string
}

// Apply copies the set fields onto id.
func (u ProfileUpdate) Apply(id *Identity) {
	if u.FirstName != nil {
		id.FirstName = strings.TrimSpace(*u.FirstName)
	}
	if u.LastName != nil {
		id.LastName = strings.TrimSpace(*u.LastName)
	}
	if u.AvatarURL != nil {
		id.AvatarURL = strings.TrimSpace(*u.AvatarURL)
	}
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
