// Package account mounts the customer account API: registration and email
// confirmation, password and federated login, session refresh and logout,
// password reset, profile, and anonymous visitor tracking.
//
//	r.Mount("/users", account.New(svc, sessions, cookies, account.WithLogger(log)).Handle())
package account
