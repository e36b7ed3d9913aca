package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authflow/pkg/email"
)

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	now := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	sender := email.NewDevSender(dir, email.WithDevClock(func() time.Time { return now }))

	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "jane@example.com",
		Subject:  "Password Reset",
		BodyHTML: "<p>reset</p>",
		BodyText: "reset",
		Tag:      email.TagPasswordReset,
	})
	require.NoError(t, err)

	base := "2025_03_01_103000.000000_password-reset"
	html, err := os.ReadFile(filepath.Join(dir, base+".html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>reset</p>", string(html))

	raw, err := os.ReadFile(filepath.Join(dir, base+".json"))
	require.NoError(t, err)
	var meta map[string]string
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "jane@example.com", meta["send_to"])
	assert.Equal(t, "Password Reset", meta["subject"])
	assert.Equal(t, "reset", meta["body_text"])
}

func TestDevSender_InvalidParams(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	sender := email.NewDevSender(dir)

	err := sender.SendEmail(context.Background(), email.SendEmailParams{SendTo: "bad"})
	assert.ErrorIs(t, err, email.ErrInvalidParams)

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}
