// Package handler adapts typed request handlers to net/http.
//
// A HandlerFunc receives a Context and a request value populated by binders,
// and returns a Response. Wrap turns it into an http.HandlerFunc:
//
//	r.Post("/login", handler.Wrap(m.login,
//		handler.WithBinders[loginRequest](handler.BindJSON()),
//		handler.WithErrorHandler[loginRequest](handler.NewErrorHandler(log)),
//	))
//
// Responses share the JSONResponse envelope. Errors are rendered by
// AsHTTPError: HTTPError values keep their status and key, bind failures map
// to 400 or 415, and anything else is an opaque 500.
package handler
