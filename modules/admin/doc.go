// Package admin mounts the back-office API: admin login, logout and session
// refresh, plus the usage analytics summary.
package admin
