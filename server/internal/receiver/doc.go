// Package receiver implements POST /api/v1/ingest — the HTTP endpoint that
// accepts NodeSnapshot payloads from nodepulse-agent instances.
//
// The handler validates that node_id is non-empty (400 if missing), then calls
// store.Put to record the snapshot, evaluates alert rules against it, and
// updates ingest metrics. Authentication is enforced upstream by the API key
// middleware (see package auth), so the receiver itself only performs
// structural validation.
//
// New wires the receiver to the snapshot store, alert engine and metrics.
package receiver
