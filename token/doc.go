// Package token issues and verifies the stateless admin session credential:
// an HS256-signed JWT carrying subject "admin", the operator email, a role
// claim, and issued-at/expiry timestamps.
//
// There is no server-side session state and no revocation list. A token is
// valid exactly when its signature verifies and its expiry has not passed;
// logout is a client-side discard.
package token
