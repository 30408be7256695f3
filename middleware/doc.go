// Package middleware provides net/http wrappers over the adminguard Engine:
// a bearer-token guard for privileged routes and a fixed-window rate limit
// with explicit and silent rejection modes.
package middleware
