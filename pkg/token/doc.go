// Package token issues and verifies compact, signed, time-limited tokens that
// authorize one-shot actions such as email confirmation and password reset.
//
// A token binds a subject string and its issuance instant under an
// HMAC-SHA256 signature. The signing key is derived per purpose from the
// shared secret with HKDF, so a token issued for one purpose never verifies
// for another even when the subject matches.
//
// Token format: base64url(payload).base64url(signature)
//
// # Usage
//
//	codec, err := token.NewCodec(secret, token.WithClock(clock.New()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tok, err := codec.Issue(token.PurposeEmailConfirm, "alice@example.com")
//	...
//	email, err := codec.Verify(token.PurposeEmailConfirm, tok, 24*time.Hour)
//	switch {
//	case errors.Is(err, token.ErrExpiredToken):
//	    // valid signature, too old
//	case errors.Is(err, token.ErrInvalidToken):
//	    // malformed, tampered or issued for another purpose
//	}
//
// Issue has no side effects. Verify reads only the injected clock.
// Signature comparison is constant time.
package token
