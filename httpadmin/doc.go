// Package httpadmin exposes the engine's external interfaces over HTTP:
// admin login, blocklist administration, recent security events, and the
// silently rate-limited event-ingestion endpoint. Everything beyond these
// request/response contracts — page rendering, dashboards, payments — lives
// outside this subsystem.
package httpadmin
