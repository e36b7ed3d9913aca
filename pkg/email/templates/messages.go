package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Confirmation asks a new customer to confirm their address.
func Confirmation(name, appName, actionURL, expiresIn string) templ.Component {
	return Group(
		Text("Hello "+name+","),
		Text("Thanks for signing up for "+appName+". Please confirm your email address to activate your account."),
		PrimaryButton("Confirm email", actionURL),
		linkFallback(actionURL),
		TextSecondary("This link expires in "+expiresIn+"."),
	)
}

// Welcome greets a customer whose account just became active.
func Welcome(name, appName, email, profileURL string) templ.Component {
	return Group(
		Text("Welcome, "+name+"!"),
		templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
			return write(w,
				`<p>Your `, templ.EscapeString(appName), ` account for <strong>`,
				templ.EscapeString(email), `</strong> is now active.</p>`,
			)
		}),
		PrimaryButton("Go to your profile", profileURL),
	)
}

// PasswordReset carries a single-use reset link.
func PasswordReset(name, appName, actionURL, expiresIn string) templ.Component {
	return Group(
		Text("Hello "+name+","),
		Text("We received a request to reset the password for your "+appName+" account."),
		PrimaryButton("Reset password", actionURL),
		TextSecondary("This link expires in "+expiresIn+" and can be used once. If you did not request a reset, you can ignore this email."),
	)
}

func linkFallback(href string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return write(w,
			`<p style="font-size:13px;color:#71717a;">If the button does not work, copy this link into your browser:<br>`,
			templ.EscapeString(href), `</p>`,
		)
	})
}
