package alerts

import (
	"strconv"
	"strings"

	"github.com/nodepulse/nodepulse/pkg/types"
)

// evalCondition evaluates a rule condition string against a NodeSnapshot.
//
// Supported expressions (field operator value):
//
//	score < 60
//	block_age_seconds > 30
//	avg_block_time_seconds > 15
//	avg_l1_latency_ms > 200
//	avg_consensus_latency_ms > 200
//	uptime_pct < 99
//	peer_count < 10
//	tier == worst
//	l1_rate_limit == detected
//	consensus_rate_limit == detected
//	cert_days_left < 14
//
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, snap *types.NodeSnapshot) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	switch field {
	case "tier":
		if op == "==" {
			return snap.Tier == rhs, 0
		}
		return false, 0

	case "l1_rate_limit":
		if op == "==" {
			return snap.L1RateLimit.Level == rhs, 0
		}
		return false, 0

	case "consensus_rate_limit":
		if op == "==" {
			return snap.ConsensusRateLimit.Level == rhs, 0
		}
		return false, 0

	case "cert_days_left":
		threshold, err := strconv.ParseFloat(rhs, 64)
		if err != nil {
			return false, 0
		}
		for _, c := range snap.Certs {
			v := float64(c.DaysLeft)
			if compareFloat(v, op, threshold) {
				return true, v
			}
		}
		return false, 0

	default:
		v, ok := numericField(field, snap)
		if !ok {
			return false, 0
		}
		threshold, err := strconv.ParseFloat(rhs, 64)
		if err != nil {
			return false, 0
		}
		return compareFloat(v, op, threshold), v
	}
}

// numericField maps a field name to its value in the snapshot.
func numericField(field string, snap *types.NodeSnapshot) (float64, bool) {
	switch field {
	case "score":
		return float64(snap.Score), true
	case "block_age_seconds":
		return float64(snap.BlockAgeSeconds), true
	case "avg_block_time_seconds":
		return snap.AvgBlockTimeSeconds, true
	case "avg_l1_latency_ms":
		return snap.AvgL1LatencyMs, true
	case "avg_consensus_latency_ms":
		return snap.AvgConsensusLatencyMs, true
	case "uptime_pct":
		return snap.UptimePct, true
	case "peer_count":
		return float64(snap.PeerCount), true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
