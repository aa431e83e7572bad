// Package config loads the server-side configuration from the `server:` section
// of config.yaml (the `agent:` key is ignored by the server binary).
//
// Config fields:
//   - HTTPPort     — port for the ingest endpoint, REST API and WebSocket hub (default 8080)
//   - Auth.Mode    — "apikey" or "none"; "mtls" supported for future use
//   - Auth.KeyEnv  — environment variable holding the expected API key
//   - Auth.Header  — HTTP header name carrying the key (default "x-api-key")
//   - Snapshot.TTL — how long a node snapshot remains live (default 5m)
//   - Alerts       — rule definitions and webhook delivery targets
//
// Load(path) applies defaults before unmarshalling, then validates.
package config
