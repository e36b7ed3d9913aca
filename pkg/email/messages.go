package email

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/authflow/pkg/email/templates"
)

const (
	TagConfirmation  = "email-confirmation"
	TagWelcome       = "welcome"
	TagPasswordReset = "password-reset"
)

// Composer builds the account lifecycle messages and the links embedded in them.
type Composer struct {
	baseURL string
	appName string
}

// NewComposer validates the frontend base URL the links point at.
func NewComposer(cfg Config) (*Composer, error) {
	base := strings.TrimRight(cfg.FrontendBaseURL, "/")
	if _, err := url.ParseRequestURI(base); err != nil || base == "" {
		return nil, fmt.Errorf("%w: FrontendBaseURL must be an absolute URL", ErrInvalidConfig)
	}
	appName := cfg.AppName
	if appName == "" {
		appName = "Authflow"
	}

	return &Composer{baseURL: base, appName: appName}, nil
}

// ConfirmationURL is the frontend link that redeems an email confirmation token.
func (c *Composer) ConfirmationURL(token, redirectTo string) string {
	link := fmt.Sprintf("%s/confirm-email/%s/", c.baseURL, url.PathEscape(token))
	if redirectTo != "" {
		link += "?" + url.Values{"from": {redirectTo}}.Encode()
	}
	return link
}

// PasswordResetURL is the frontend link that redeems a password reset token.
func (c *Composer) PasswordResetURL(token string) string {
	return fmt.Sprintf("%s/password-reset/%s/", c.baseURL, url.PathEscape(token))
}

// Confirmation builds the message asking a new customer to confirm their address.
func (c *Composer) Confirmation(ctx context.Context, to, name, token, redirectTo string, ttl time.Duration) (SendEmailParams, error) {
	link := c.ConfirmationURL(token, redirectTo)
	name = displayName(name, to)
	return c.render(ctx, TagConfirmation, to, "Confirm Your Email",
		templates.Confirmation(name, c.appName, link, humanizeTTL(ttl)),
		fmt.Sprintf("Hello %s, please confirm your email: %s", name, link))
}

// Welcome builds the message sent once an account becomes active.
func (c *Composer) Welcome(ctx context.Context, to, name string) (SendEmailParams, error) {
	name = displayName(name, to)
	return c.render(ctx, TagWelcome, to, "Welcome to "+c.appName,
		templates.Welcome(name, c.appName, to, c.baseURL+"/profile"),
		fmt.Sprintf("Welcome, %s!", name))
}

// PasswordReset builds the message carrying a single-use reset link.
func (c *Composer) PasswordReset(ctx context.Context, to, name, token string, ttl time.Duration) (SendEmailParams, error) {
	link := c.PasswordResetURL(token)
	name = displayName(name, to)
	return c.render(ctx, TagPasswordReset, to, "Password Reset",
		templates.PasswordReset(name, c.appName, link, humanizeTTL(ttl)),
		fmt.Sprintf("Hello %s,\n\nClick the link to reset your password:\n%s", name, link))
}

func (c *Composer) render(ctx context.Context, tag, to, subject string, body templ.Component, text string) (SendEmailParams, error) {
	html, err := templates.Render(ctx, templates.Layout(templates.Page{
		Subject: subject,
		AppName: c.appName,
		LogoURL: c.baseURL + "/logo.png",
	}, body))
	if err != nil {
		return SendEmailParams{}, errors.Join(ErrRenderTemplate, err)
	}
	return SendEmailParams{
		SendTo:   to,
		Subject:  subject,
		BodyHTML: html,
		BodyText: text,
		Tag:      tag,
	}, nil
}

func displayName(name, fallback string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return fallback
}

func humanizeTTL(d time.Duration) string {
	switch {
	case d <= 0:
		return "a limited time"
	case d%time.Hour == 0:
		if h := int(d / time.Hour); h != 1 {
			return fmt.Sprintf("%d hours", h)
		}
		return "1 hour"
	default:
		m := int(d.Round(time.Minute) / time.Minute)
		if m <= 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
}
