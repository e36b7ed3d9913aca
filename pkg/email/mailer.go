package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

// EmailSender delivers a single transactional email.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
type SendEmailParams struct {
	SendTo   string `json:"send_to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	BodyText string `json:"body_text,omitempty"`
	Tag      string `json:"tag,omitempty"`
}

// Validate reports whether the params can be handed to a provider.
func (p SendEmailParams) Validate() error {
	var errs []error
	if strings.TrimSpace(p.SendTo) == "" {
		errs = append(errs, errors.New("recipient is required"))
	} else if !isEmail(p.SendTo) {
		errs = append(errs, fmt.Errorf("recipient %q is not a valid email address", p.SendTo))
	}
	if strings.TrimSpace(p.Subject) == "" {
		errs = append(errs, errors.New("subject is required"))
	}
	if strings.TrimSpace(p.BodyHTML) == "" && strings.TrimSpace(p.BodyText) == "" {
		errs = append(errs, errors.New("body is required"))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidParams}, errs...)...)
	}
	return nil
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
