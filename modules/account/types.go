package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authflow/pkg/identity"
)

type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	RedirectTo string `json:"redirect_to"`
}

type ConfirmEmailRequest struct {
	Token string `path:"token"`
}

type ResendRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token"`
	State   string `json:"state"`
}

// FacebookLoginRequest is the Graph API profile the client fetched, plus the
// state it started the login with.
type FacebookLoginRequest struct {
	identity.FacebookUser
	State string `json:"state"`
}

type ResetRequest struct {
	Email string `json:"email"`
}

type ResetConfirmRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	AvatarURL *string `json:"avatar_url"`
}

// User is the public view of an identity.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUser(id *identity.Identity) User {
	return User{
		ID:        id.ID,
		Email:     id.Email,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		AvatarURL: id.AvatarURL,
		Role:      string(id.Role),
		Active:    id.Active,
		CreatedAt: id.CreatedAt,
	}
}

type RegisterResponse struct {
	User             User `json:"user"`
	ConfirmationSent bool `json:"confirmation_sent"`
}

type ConfirmEmailResponse struct {
	Email            string `json:"email"`
	AlreadyConfirmed bool   `json:"already_confirmed"`
}

// LoginResponse carries the session handle for clients using the bearer
// header; browsers get it as a cookie too.
type LoginResponse struct {
	User         User      `json:"user"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	RedirectTo   string    `json:"redirect_to"`
	Created      bool      `json:"created,omitempty"`
}

type SessionResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

type VisitResponse struct {
	VisitorID  string    `json:"visitor_id"`
	LastActive time.Time `json:"last_active"`
}
