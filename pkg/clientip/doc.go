// Package clientip resolves the caller's address from proxy headers and
// carries it through the request context and log records.
package clientip
