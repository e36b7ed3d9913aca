package templates_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authflow/pkg/email/templates"
)

func TestRender_Layout(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), templates.Layout(
		templates.Page{Subject: "Hi & bye", AppName: "Acme", LogoURL: "https://acme.test/logo.png"},
		templates.Text("body"),
	))
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Hi &amp; bye</title>")
	assert.Contains(t, html, `src="https://acme.test/logo.png"`)
	assert.Contains(t, html, "<p>body</p>")
	assert.Contains(t, html, "&copy; Acme")
}

func TestRender_EscapesText(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), templates.Welcome("<b>x</b>", "Acme", "a@b.test", "https://acme.test/profile"))
	require.NoError(t, err)

	assert.Contains(t, html, "Welcome, &lt;b&gt;x&lt;/b&gt;!")
	assert.Contains(t, html, "<strong>a@b.test</strong>")
	assert.NotContains(t, html, "<b>x</b>")
}

func TestPrimaryButton_SanitisesURL(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), templates.PrimaryButton("Go", "javascript:alert(1)"))
	require.NoError(t, err)
	assert.NotContains(t, html, "javascript:")

	html, err = templates.Render(context.Background(), templates.PrimaryButton("Go", "https://acme.test/reset/tok/"))
	require.NoError(t, err)
	assert.Contains(t, html, `href="https://acme.test/reset/tok/"`)
}

func TestRender_PropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	failing := templ.ComponentFunc(func(context.Context, io.Writer) error { return boom })

	_, err := templates.Render(context.Background(), templates.Group(templates.Text("a"), failing))
	assert.ErrorIs(t, err, boom)
}
