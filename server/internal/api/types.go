package api

import "github.com/nodepulse/nodepulse/pkg/types"

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	OverallScore    float64 `json:"overall_score"`
	Tier            string  `json:"tier"`
	NodeCount       int     `json:"node_count"`
	BestCount       int     `json:"best_count"`
	GoodCount       int     `json:"good_count"`
	AcceptableCount int     `json:"acceptable_count"`
	WorstCount      int     `json:"worst_count"`
	AlertCount      int     `json:"alert_count"`
}

// NodeResponse is one node entry in GET /api/v1/nodes or GET /api/v1/nodes/{id}.
type NodeResponse struct {
	NodeID         string `json:"node_id"`
	Network        string `json:"network,omitempty"`
	Score          int    `json:"score"`
	Tier           string `json:"tier"`
	CriticalReason string `json:"critical_reason,omitempty"`

	L1LatencyTier        string `json:"l1_latency_tier"`
	ConsensusLatencyTier string `json:"consensus_latency_tier"`
	CadenceTier          string `json:"cadence_tier"`

	L1RateLimit        types.RateLimitStatus `json:"l1_rate_limit"`
	ConsensusRateLimit types.RateLimitStatus `json:"consensus_rate_limit"`
	Consensus          types.ConsensusHealth `json:"consensus"`

	BlockNumber           uint64  `json:"block_number,omitempty"`
	BlockAgeSeconds       int64   `json:"block_age_seconds"`
	AvgBlockTimeSeconds   float64 `json:"avg_block_time_seconds"`
	AvgL1LatencyMs        float64 `json:"avg_l1_latency_ms"`
	AvgConsensusLatencyMs float64 `json:"avg_consensus_latency_ms"`

	ChainID       string `json:"chain_id,omitempty"`
	ClientVersion string `json:"client_version,omitempty"`
	PeerCount     int    `json:"peer_count,omitempty"`
	Syncing       bool   `json:"syncing"`

	UptimePct    float64 `json:"uptime_pct"`
	ErrorMessage string  `json:"error_message,omitempty"`

	Diagnostics []DiagnosticHint `json:"diagnostics"`
	LastSeen    string           `json:"last_seen"` // RFC3339
}

// SnapshotResponse is the payload for GET /api/v1/snapshot.
type SnapshotResponse struct {
	Nodes       []NodeResponse `json:"nodes"`
	GeneratedAt string         `json:"generated_at"` // RFC3339
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
