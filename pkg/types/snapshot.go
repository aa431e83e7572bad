package types

import "time"

// NodeSnapshot is the full health picture of one monitored node after one
// probe cycle. It is produced by the agent's health engine and delivered to
// the server via POST /api/v1/ingest.
type NodeSnapshot struct {
	// NodeID is the configured identifier of the monitored node.
	NodeID string `json:"node_id"`

	// Network is an optional label (e.g. "mainnet", "sepolia").
	Network string `json:"network,omitempty"`

	// Timestamp is when the probe cycle completed (RFC3339 in JSON).
	Timestamp time.Time `json:"timestamp"`

	// Score is the composite health score in [0, 100].
	Score int `json:"score"`

	// Tier is the verdict tier derived from Score:
	// "best" | "good" | "acceptable" | "worst".
	Tier string `json:"tier"`

	// CriticalReason is non-empty when a hard override zeroed the score
	// (stalled block production, consensus failure, dead RPC).
	CriticalReason string `json:"critical_reason,omitempty"`

	// Per-metric classifications, sufficient to render a breakdown.
	L1LatencyTier        string `json:"l1_latency_tier"`
	ConsensusLatencyTier string `json:"consensus_latency_tier"`
	CadenceTier          string `json:"cadence_tier"`

	// Rate-limit verdicts per probed endpoint.
	L1RateLimit        RateLimitStatus `json:"l1_rate_limit"`
	ConsensusRateLimit RateLimitStatus `json:"consensus_rate_limit"`

	// Consensus-layer functionality flags.
	Consensus ConsensusHealth `json:"consensus"`

	// Raw measurements backing the classifications.
	BlockNumber           uint64  `json:"block_number,omitempty"`
	BlockAgeSeconds       int64   `json:"block_age_seconds"`
	AvgBlockTimeSeconds   float64 `json:"avg_block_time_seconds"`
	AvgL1LatencyMs        float64 `json:"avg_l1_latency_ms"`
	AvgConsensusLatencyMs float64 `json:"avg_consensus_latency_ms"`

	// Node identity as reported by the node itself.
	ChainID       string `json:"chain_id,omitempty"`
	ClientVersion string `json:"client_version,omitempty"`
	PeerID        string `json:"peer_id,omitempty"`
	PeerCount     int    `json:"peer_count,omitempty"`
	Syncing       bool   `json:"syncing"`

	// UptimePct is the percentage of recent probe cycles that completed
	// successfully, over the agent's tracking window.
	UptimePct float64 `json:"uptime_pct"`

	// Certs describes the TLS certificates of HTTPS node endpoints.
	Certs []CertStatus `json:"certs,omitempty"`

	// ErrorMessage is non-empty when the probe cycle itself failed.
	ErrorMessage string `json:"error_message,omitempty"`
}

// RateLimitStatus is the wire form of a rate-limit verdict for one endpoint.
type RateLimitStatus struct {
	// Level is one of: "none" | "possible" | "likely" | "detected".
	Level string `json:"level"`

	// Details records the triggering evidence: status-code counts, throttle
	// error codes, or the numeric failure rate / average elapsed time.
	Details string `json:"details,omitempty"`
}

// ConsensusHealth reports which beacon API surfaces responded with usable data.
type ConsensusHealth struct {
	FinalityWorking bool `json:"finality_working"`
	HeadWorking     bool `json:"head_working"`

	// Functional is true iff both FinalityWorking and HeadWorking are true.
	Functional bool `json:"functional"`
}

// CertStatus describes the TLS leaf certificate of one HTTPS node endpoint.
type CertStatus struct {
	Endpoint string `json:"endpoint"`

	// Status is one of: "valid" | "expiring" | "expired" | "unreachable".
	Status string `json:"status"`

	Issuer   string `json:"issuer,omitempty"`
	NotAfter string `json:"not_after,omitempty"` // RFC3339
	DaysLeft int    `json:"days_left"`
}

// IngestResponse is the server's reply to POST /api/v1/ingest.
type IngestResponse struct {
	Ok      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
