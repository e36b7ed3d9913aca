// Package session issues and resolves opaque session handles across three
// trust tiers: anonymous, customer and admin.
//
// A handle is 32 random bytes encoded as base64url. The payload (role,
// identity email and a cached profile snapshot) lives in a Store that expires
// entries natively; the Manager never trusts a handle the store cannot return.
//
// # Lifecycle
//
//	m := session.New(session.NewRedisStore(client))
//
//	anon, _ := m.CreateAnonymous(ctx)
//	s, _ := m.Login(ctx, anon.Handle, "alice@example.com", session.RoleCustomer, profile)
//	s, err := m.RequireRole(ctx, s.Handle, session.RoleCustomer)
//	_, _ = m.Extend(ctx, s.Handle)
//	_ = m.Delete(ctx, s.Handle)
//
// Resolve never fails on a missing or expired handle; it returns the anonymous
// fallback. RequireRole distinguishes ErrUnauthorized (no live session) from
// ErrForbidden (live session, wrong role). Login deletes the presented
// anonymous handle instead of merging it into the new session.
//
// # Transports
//
// CookieTransport, HeaderTransport and CompositeTransport move handles over
// HTTP. Transports builds the per-role set used by the HTTP modules.
package session
