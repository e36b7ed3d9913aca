package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrymomot/authflow/pkg/logger"
)

// DevSender implements EmailSender for local development.
// Each message is written as an HTML file plus a JSON metadata file.
type DevSender struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// DevSenderOption configures a DevSender.
type DevSenderOption func(*DevSender)

// WithDevClock overrides the clock used for file names.
func WithDevClock(now func() time.Time) DevSenderOption {
	return func(d *DevSender) {
		if now != nil {
			d.now = now
		}
	}
}

// WithDevLogger logs every saved message, links included.
func WithDevLogger(l *slog.Logger) DevSenderOption {
	return func(d *DevSender) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDevSender creates a development sender that saves messages under dir.
func NewDevSender(dir string, opts ...DevSenderOption) *DevSender {
	d := &DevSender{dir: dir, now: time.Now, logger: logger.Discard()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type emailMetadata struct {
	Timestamp string `json:"timestamp"`
	SendTo    string `json:"send_to"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
	BodyText  string `json:"body_text,omitempty"`
}

// SendEmail saves the message to the configured directory.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %w", ErrFailedToSendEmail, err)
	}

	now := d.now()
	identifier := params.Tag
	if identifier == "" {
		identifier = params.Subject
	}
	base := fmt.Sprintf("%s_%s", now.Format("2006_01_02_150405.000000"), sanitizeFilename(identifier))

	if err := os.WriteFile(filepath.Join(d.dir, base+".html"), []byte(params.BodyHTML), 0o644); err != nil {
		return fmt.Errorf("%w: write html: %w", ErrFailedToSendEmail, err)
	}

	data, err := json.MarshalIndent(emailMetadata{
		Timestamp: now.Format(time.RFC3339),
		SendTo:    params.SendTo,
		Subject:   params.Subject,
		Tag:       params.Tag,
		BodyText:  params.BodyText,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal metadata: %w", ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), data, 0o644); err != nil {
		return fmt.Errorf("%w: write metadata: %w", ErrFailedToSendEmail, err)
	}

	d.logger.InfoContext(ctx, "email saved",
		logger.Email(params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("file", base),
	)
	return nil
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")
	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
