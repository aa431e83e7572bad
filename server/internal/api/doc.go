// Package api implements the HTTP REST API for nodepulse-server.
//
// New(store, alerts) returns an http.Handler that serves:
//
//	GET /api/v1/health      — fleet-wide score, tier, per-tier counts
//	GET /api/v1/nodes       — all live nodes ([]NodeResponse)
//	GET /api/v1/nodes/{id}  — single node; 404 if unknown or stale
//	GET /api/v1/alerts      — firing and recently resolved alerts
//	GET /api/v1/certs       — TLS cert status per node endpoint
//	GET /api/v1/snapshot    — full JSON dump: all live nodes + generated_at
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods
//   - Read live entries from the store (stale entries excluded from lists)
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api
