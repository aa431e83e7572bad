package health

// Tier is a categorical quality band for a single measured dimension.
// TierInvalid means "no measurement", not "instant response".
type Tier int

const (
	TierInvalid Tier = iota
	TierExcellent
	TierGood
	TierAcceptable
	TierSlow
	TierVerySlow
)

// String returns the wire/display name of the tier.
func (t Tier) String() string {
	switch t {
	case TierExcellent:
		return "excellent"
	case TierGood:
		return "good"
	case TierAcceptable:
		return "acceptable"
	case TierSlow:
		return "slow"
	case TierVerySlow:
		return "very_slow"
	default:
		return "invalid"
	}
}

// Latency thresholds in milliseconds. Ordered; first match wins.
const (
	latencyExcellentMs  = 25
	latencyGoodMs       = 50
	latencyAcceptableMs = 200
	latencySlowMs       = 500
)

// ClassifyLatency maps an average request latency to a Tier.
// A zero input means no measurement was taken and returns TierInvalid.
func ClassifyLatency(seconds float64) Tier {
	if seconds == 0 {
		return TierInvalid
	}
	ms := seconds * 1000
	switch {
	case ms < latencyExcellentMs:
		return TierExcellent
	case ms < latencyGoodMs:
		return TierGood
	case ms < latencyAcceptableMs:
		return TierAcceptable
	case ms < latencySlowMs:
		return TierSlow
	default:
		return TierVerySlow
	}
}

// DefaultExpectedBlockTime is the target block cadence used when a node's
// configuration does not override it. Matches a 12-second chain.
const DefaultExpectedBlockTime = 12.0

// ClassifyBlockTime maps an observed average inter-block time to a Tier,
// using deviation bands around the chain's expected cadence rather than an
// absolute scale. A zero input returns TierInvalid.
//
// The cadence scale has no Acceptable band: below 0.8×expected is Excellent,
// up to 1.2× is Good, up to 1.5× is Slow, beyond that VerySlow.
func ClassifyBlockTime(seconds, expected float64) Tier {
	if seconds == 0 {
		return TierInvalid
	}
	if expected <= 0 {
		expected = DefaultExpectedBlockTime
	}
	// Compare the deviation ratio, not the scaled threshold: 12*0.8 is not
	// exactly 9.6 in float64, but 9.6/12 is exactly 0.8, so boundary
	// cadences land in the right band.
	r := seconds / expected
	switch {
	case r < 0.8:
		return TierExcellent
	case r <= 1.2:
		return TierGood
	case r <= 1.5:
		return TierSlow
	default:
		return TierVerySlow
	}
}
