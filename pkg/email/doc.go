// Package email delivers the transactional messages of the account lifecycle.
//
// EmailSender abstracts the provider. NewPostmarkClient sends through Postmark,
// NewDevSender writes each message to disk for local development. Composer
// renders the confirmation, welcome and password reset messages with the templ
// components in the templates subpackage and builds the frontend links they
// carry:
//
//	composer, err := email.NewComposer(cfg)
//	msg, err := composer.PasswordReset(ctx, user.Email, user.FirstName, token, time.Hour)
//	err = sender.SendEmail(ctx, msg)
//
// Every sender validates SendEmailParams first and fails with ErrInvalidParams.
// Provider failures are reported as ErrFailedToSendEmail.
package email
