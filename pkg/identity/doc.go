// Package identity owns local accounts: registration, password checks and
// find-or-create for callers vouched for by a federated provider.
//
// Email is the natural key. Storage implementations enforce uniqueness and
// report ErrConflict; FindOrCreate recovers from a lost provisioning race by
// re-reading the winner's record, so callers never see the conflict.
//
// GoogleVerifier checks Google ID tokens with go-oidc. FacebookUser adapts the
// client-side Facebook profile payload.
package identity
