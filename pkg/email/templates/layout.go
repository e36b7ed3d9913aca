package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Page holds the values every message shares.
type Page struct {
	Subject string
	AppName string
	LogoURL string
}

// Layout wraps content in the table-based frame mail clients render reliably.
func Layout(p Page, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		appName := templ.EscapeString(p.AppName)
		if err := write(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`, templ.EscapeString(p.Subject), `</title></head>`,
			`<body style="margin:0;padding:0;background:#f4f4f5;font-family:Helvetica,Arial,sans-serif;color:#18181b;">`,
			`<table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="padding:32px 0;"><tr><td align="center">`,
			`<table role="presentation" width="560" cellspacing="0" cellpadding="0" style="background:#ffffff;border-radius:8px;padding:32px;">`,
			`<tr><td style="padding-bottom:24px;"><img src="`, attrURL(p.LogoURL), `" alt="`, appName, `" height="32"></td></tr><tr><td>`,
		); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		return write(w,
			`</td></tr><tr><td style="padding-top:32px;font-size:12px;color:#71717a;">&copy; `, appName, `</td></tr>`,
			`</table></td></tr></table></body></html>`,
		)
	})
}

// Group renders components one after another.
func Group(parts ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, p := range parts {
			if err := p.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// Text is a paragraph of escaped text.
func Text(s string) templ.Component {
	return paragraph("", s)
}

// TextSecondary is a muted small paragraph.
func TextSecondary(s string) templ.Component {
	return paragraph(`font-size:13px;color:#71717a;`, s)
}

// PrimaryButton is a call-to-action link styled as a button.
func PrimaryButton(label, href string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w,
			`<p style="margin:24px 0;"><a href="`, attrURL(href),
			`" style="background:#2563eb;color:#ffffff;padding:12px 20px;border-radius:6px;text-decoration:none;display:inline-block;">`,
			templ.EscapeString(label), `</a></p>`,
		)
	})
}

func paragraph(style, s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if style == "" {
			return write(w, `<p>`, templ.EscapeString(s), `</p>`)
		}
		return write(w, `<p style="`, style, `">`, templ.EscapeString(s), `</p>`)
	})
}

// attrURL sanitises href and escapes it for an attribute value.
func attrURL(href string) string {
	return templ.EscapeString(string(templ.URL(href)))
}
