package account

import "time"

// Config holds the policy values of the account flows.
type Config struct {
	// ConfirmMaxAge bounds email confirmation links. Fixed policy, 24h.
	ConfirmMaxAge time.Duration `env:"CONFIRM_TOKEN_MAX_AGE" envDefault:"24h"`
	ResetMaxAge   time.Duration `env:"RESET_TOKEN_MAX_AGE" envDefault:"1h"`

	// RecentWindow is the "active right now" window of the analytics summary.
	RecentWindow time.Duration `env:"ANALYTICS_RECENT_WINDOW" envDefault:"15m"`

	// DefaultRedirect is used when a federated login carries no usable state.
	DefaultRedirect string `env:"DEFAULT_LOGIN_REDIRECT" envDefault:"/profile"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		ConfirmMaxAge:   24 * time.Hour,
		ResetMaxAge:     time.Hour,
		RecentWindow:    15 * time.Minute,
		DefaultRedirect: "/profile",
	}
}
