// Package migrations embeds the goose SQL migrations for the identity,
// password reset ledger and daily activity tables.
package migrations

import "embed"

// FS holds the migration files at its root; pass "." as the directory.
//
//go:embed *.sql
var FS embed.FS
