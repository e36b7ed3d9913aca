// Package authflow is the identity session and activity tracking backend.
//
// Layout:
//
//   - pkg/token, pkg/ledger: signed one-shot tokens and their single-use ledger
//   - pkg/session: tiered sessions over a TTL store (Redis or memory)
//   - pkg/activity: per-day unique visitor aggregation
//   - pkg/identity: local and federated accounts
//   - svc/account: the operations the HTTP layer calls, with one error taxonomy
//   - modules/account, modules/admin: chi routers mounted at /users and /admin
//   - cmd/server: wiring from environment configuration
package authflow
