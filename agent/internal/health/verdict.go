package health

// VerdictTier is the categorical quality band of a final verdict.
type VerdictTier int

const (
	VerdictWorst VerdictTier = iota
	VerdictAcceptable
	VerdictGood
	VerdictBest
)

// String returns the wire/display name of the verdict tier.
func (t VerdictTier) String() string {
	switch t {
	case VerdictBest:
		return "best"
	case VerdictGood:
		return "good"
	case VerdictAcceptable:
		return "acceptable"
	default:
		return "worst"
	}
}

// Score thresholds for the verdict tiers.
const (
	scoreBest       = 90
	scoreGood       = 75
	scoreAcceptable = 60
)

// Hard-override thresholds, in seconds of block age.
const (
	// blockAgeCritical zeroes the score outright: the chain tip has not
	// advanced within an acceptable window.
	blockAgeCritical = 20

	// blockAgeStale triggers the staleness penalty on the accumulation path.
	// A node can score well on latency while silently not advancing its tip.
	blockAgeStale = 30

	// blockAgeFresh earns the full freshness bonus.
	blockAgeFresh = 15

	stalenessPenalty = 30
)

// VerdictInput bundles the pre-aggregated measurements the verdict calculator
// consumes. All latency and block-time values are averages in seconds; a zero
// value means the dimension was not measurable.
type VerdictInput struct {
	BlockAgeSeconds     int64
	Consensus           ConsensusStatus
	L1RateLimit         RateLimitVerdict
	ConsensusRateLimit  RateLimitVerdict
	AvgL1Latency        float64
	AvgConsensusLatency float64
	AvgBlockTime        float64

	// ExpectedBlockTime is the chain's target cadence.
	// Zero falls back to DefaultExpectedBlockTime.
	ExpectedBlockTime float64
}

// VerdictReport is the terminal output of the scoring engine: the composite
// score, its tier, and the per-metric classifications backing it.
// It is built once per run and never mutated.
type VerdictReport struct {
	Score int
	Tier  VerdictTier

	// CriticalReason is non-empty when a hard override forced the score to 0.
	CriticalReason string

	L1LatencyTier        Tier
	ConsensusLatencyTier Tier
	CadenceTier          Tier
}

// Critical failure reasons.
const (
	reasonBlockStalled    = "block production exceeded 20s"
	reasonConsensusFailed = "consensus layer failed"
	reasonL1Dead          = "L1 RPC completely failed"
	reasonConsensusDead   = "consensus RPC completely failed"
)

// CalculateVerdict turns aggregated measurements into a scored verdict.
//
// It is a short-circuiting decision sequence, not a weighted sum: four hard
// override checks run first, in a fixed order, each terminal. Only when none
// fires does the weighted accumulation run. Reordering the overrides changes
// observable behavior and must not happen.
func CalculateVerdict(in VerdictInput) VerdictReport {
	rep := VerdictReport{
		L1LatencyTier:        ClassifyLatency(in.AvgL1Latency),
		ConsensusLatencyTier: ClassifyLatency(in.AvgConsensusLatency),
		CadenceTier:          ClassifyBlockTime(in.AvgBlockTime, in.ExpectedBlockTime),
	}

	switch {
	case in.BlockAgeSeconds > blockAgeCritical:
		rep.CriticalReason = reasonBlockStalled
	case !in.Consensus.Functional:
		rep.CriticalReason = reasonConsensusFailed
	case in.L1RateLimit.Level == RateLimitDetected && in.AvgL1Latency == 0:
		rep.CriticalReason = reasonL1Dead
	case in.ConsensusRateLimit.Level == RateLimitDetected && in.AvgConsensusLatency == 0:
		rep.CriticalReason = reasonConsensusDead
	}
	if rep.CriticalReason != "" {
		// A critical failure always reports worst, score 0.
		rep.Score = 0
		rep.Tier = VerdictWorst
		return rep
	}

	score := l1LatencyPoints(rep.L1LatencyTier) +
		consensusLatencyPoints(rep.ConsensusLatencyTier) +
		cadencePoints(rep.CadenceTier, in.AvgBlockTime) +
		l1RateLimitPoints(in.L1RateLimit.Level) +
		consensusRateLimitPoints(in.ConsensusRateLimit.Level)

	// Staleness penalty applies before the freshness bonus; the two are a
	// single atomic adjustment step and their order fixes boundary scores
	// near age 30.
	if in.BlockAgeSeconds > blockAgeStale {
		score -= stalenessPenalty
		if score < 0 {
			score = 0
		}
	}
	switch {
	case in.BlockAgeSeconds <= blockAgeFresh:
		score += 5
	case in.BlockAgeSeconds <= blockAgeStale:
		score += 3
	default:
		score += 1
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	rep.Score = score
	rep.Tier = tierFromScore(score)
	return rep
}

// tierFromScore maps a non-critical score to its verdict tier.
func tierFromScore(score int) VerdictTier {
	switch {
	case score >= scoreBest:
		return VerdictBest
	case score >= scoreGood:
		return VerdictGood
	case score >= scoreAcceptable:
		return VerdictAcceptable
	default:
		return VerdictWorst
	}
}

// l1LatencyPoints weighs the execution RPC latency tier out of 35.
func l1LatencyPoints(t Tier) int {
	switch t {
	case TierExcellent:
		return 35
	case TierGood:
		return 30
	case TierAcceptable:
		return 20
	case TierSlow:
		return 10
	case TierVerySlow:
		return 5
	default:
		return 0
	}
}

// consensusLatencyPoints weighs the beacon API latency tier out of 20.
func consensusLatencyPoints(t Tier) int {
	switch t {
	case TierExcellent:
		return 20
	case TierGood:
		return 15
	case TierAcceptable:
		return 10
	case TierSlow, TierVerySlow:
		return 5
	default:
		return 0
	}
}

// cadencePoints weighs the block cadence tier out of 20. An unmeasurable
// cadence (no inter-block time observed) contributes nothing.
func cadencePoints(t Tier, avgBlockTime float64) int {
	if avgBlockTime <= 0 {
		return 0
	}
	switch t {
	case TierExcellent:
		return 20
	case TierGood:
		return 15
	case TierSlow:
		return 10
	case TierVerySlow:
		return 5
	default:
		return 0
	}
}

// l1RateLimitPoints weighs the execution RPC rate-limit verdict out of 12.
func l1RateLimitPoints(l RateLimitLevel) int {
	switch l {
	case RateLimitNone:
		return 12
	case RateLimitPossible:
		return 8
	case RateLimitLikely:
		return 4
	default:
		return 0
	}
}

// consensusRateLimitPoints weighs the beacon rate-limit verdict out of 7.
func consensusRateLimitPoints(l RateLimitLevel) int {
	switch l {
	case RateLimitNone:
		return 7
	case RateLimitPossible:
		return 5
	case RateLimitLikely:
		return 2
	default:
		return 0
	}
}
