// Package web holds the HTTP helpers shared by the account and admin modules.
package web
