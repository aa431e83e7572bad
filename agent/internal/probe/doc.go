// Package probe collects the raw measurements the health engine scores.
//
// A Prober is bound to one configured node and runs a full probe cycle:
// paced request bursts against the execution JSON-RPC endpoint and the
// beacon REST API (rate-limit detection and latency averaging), consecutive
// block fetches for cadence measurement, beacon head/finalized slot retrieval,
// and an optional Prometheus /metrics scrape for peer diagnostics.
//
// Every request becomes a health.Sample: transport failures and protocol
// errors are recorded in the sample's fields (status, elapsed, error code),
// never raised — the engine is total over whatever the prober hands it.
//
// Authentication (mTLS, API key, bearer, basic) is handled by the shared
// authRoundTripper in probe.go; request pacing avoids the measurement itself
// triggering server-side rate limiting.
package probe
