// Package ledger records issued one-time tokens and enforces single
// redemption.
//
// Signature and age checks live in package token; the ledger only answers
// "was this exact token issued, and has it been used". Consume is a single
// conditional write, so of two concurrent redemptions of the same token
// exactly one succeeds and the other observes ErrAlreadyConsumed.
//
//	l := ledger.New(ledger.NewPostgresStore(pool))
//	id, err := l.Record(ctx, userID, tok)
//	entry, err := l.Consume(ctx, tok)
package ledger
