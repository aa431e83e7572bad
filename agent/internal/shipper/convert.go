package shipper

import (
	"github.com/nodepulse/nodepulse/agent/internal/health"
	"github.com/nodepulse/nodepulse/pkg/types"
)

// ToSnapshot flattens an engine Result into the wire-level NodeSnapshot.
func ToSnapshot(res *health.Result, network string, certs []types.CertStatus) *types.NodeSnapshot {
	return &types.NodeSnapshot{
		NodeID:         res.NodeID,
		Network:        network,
		Timestamp:      res.Timestamp,
		Score:          res.Report.Score,
		Tier:           res.Report.Tier.String(),
		CriticalReason: res.Report.CriticalReason,

		L1LatencyTier:        res.Report.L1LatencyTier.String(),
		ConsensusLatencyTier: res.Report.ConsensusLatencyTier.String(),
		CadenceTier:          res.Report.CadenceTier.String(),

		L1RateLimit: types.RateLimitStatus{
			Level:   res.L1RateLimit.Level.String(),
			Details: res.L1RateLimit.Details,
		},
		ConsensusRateLimit: types.RateLimitStatus{
			Level:   res.ConsensusRateLimit.Level.String(),
			Details: res.ConsensusRateLimit.Details,
		},

		Consensus: types.ConsensusHealth{
			FinalityWorking: res.Consensus.FinalityWorking,
			HeadWorking:     res.Consensus.HeadWorking,
			Functional:      res.Consensus.Functional,
		},

		BlockNumber:           res.BlockNumber,
		BlockAgeSeconds:       res.BlockAgeSeconds,
		AvgBlockTimeSeconds:   res.AvgBlockTimeSeconds,
		AvgL1LatencyMs:        res.AvgL1LatencyMs,
		AvgConsensusLatencyMs: res.AvgConsensusLatMs,

		ChainID:       res.ChainID,
		ClientVersion: res.ClientVersion,
		PeerID:        res.PeerID,
		PeerCount:     res.PeerCount,
		Syncing:       res.Syncing,

		UptimePct:    res.UptimePct,
		Certs:        certs,
		ErrorMessage: res.ErrorMessage,
	}
}
