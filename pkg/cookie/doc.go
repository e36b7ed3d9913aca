// Package cookie sets, reads and deletes HTTP cookies with secure defaults
// (HttpOnly, SameSite=Lax, Path=/) that individual calls may override.
//
//	cm := cookie.NewFromConfig(cfg)
//	cm.Set(w, "session_id", handle, cookie.WithMaxAge(3600))
//	handle, err := cm.Get(r, "session_id")
//	if errors.Is(err, cookie.ErrCookieNotFound) { ... }
//	cm.Delete(w, "session_id")
package cookie
