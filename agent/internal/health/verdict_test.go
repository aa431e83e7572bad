package health

import "testing"

// healthyInput returns a VerdictInput describing a node with perfect
// measurements. Individual tests override the field under test.
func healthyInput() VerdictInput {
	return VerdictInput{
		BlockAgeSeconds:     10,
		Consensus:           ConsensusStatus{FinalityWorking: true, HeadWorking: true, Functional: true},
		L1RateLimit:         RateLimitVerdict{Level: RateLimitNone},
		ConsensusRateLimit:  RateLimitVerdict{Level: RateLimitNone},
		AvgL1Latency:        0.010,
		AvgConsensusLatency: 0.010,
		AvgBlockTime:        11.0,
		ExpectedBlockTime:   12.0,
	}
}

func TestCalculateVerdict_Overrides(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*VerdictInput)
		wantReason string
	}{
		{
			name:       "stalled block production wins even when everything else is perfect",
			mutate:     func(in *VerdictInput) { in.BlockAgeSeconds = 25 },
			wantReason: "block production exceeded 20s",
		},
		{
			name: "consensus failure is independent of freshness",
			mutate: func(in *VerdictInput) {
				in.BlockAgeSeconds = 5
				in.Consensus = ConsensusStatus{FinalityWorking: true}
			},
			wantReason: "consensus layer failed",
		},
		{
			name: "dead L1 RPC — detected throttling with no successful measurement",
			mutate: func(in *VerdictInput) {
				in.L1RateLimit = RateLimitVerdict{Level: RateLimitDetected}
				in.AvgL1Latency = 0
			},
			wantReason: "L1 RPC completely failed",
		},
		{
			name: "dead consensus RPC",
			mutate: func(in *VerdictInput) {
				in.ConsensusRateLimit = RateLimitVerdict{Level: RateLimitDetected}
				in.AvgConsensusLatency = 0
			},
			wantReason: "consensus RPC completely failed",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := healthyInput()
			tc.mutate(&in)

			rep := CalculateVerdict(in)
			if rep.Score != 0 {
				t.Errorf("Score = %d, want 0", rep.Score)
			}
			if rep.Tier != VerdictWorst {
				t.Errorf("Tier = %v, want worst", rep.Tier)
			}
			if rep.CriticalReason != tc.wantReason {
				t.Errorf("CriticalReason = %q, want %q", rep.CriticalReason, tc.wantReason)
			}
		})
	}
}

func TestCalculateVerdict_OverrideOrder(t *testing.T) {
	// Stalled block production outranks consensus failure when both apply.
	in := healthyInput()
	in.BlockAgeSeconds = 25
	in.Consensus = ConsensusStatus{}

	rep := CalculateVerdict(in)
	if rep.CriticalReason != "block production exceeded 20s" {
		t.Errorf("CriticalReason = %q, want the block-age override first", rep.CriticalReason)
	}
}

func TestCalculateVerdict_ThrottledButAlive(t *testing.T) {
	// Detected rate limiting with a non-zero latency average is NOT a dead
	// RPC — it scores through the accumulation branch with 0 rate-limit
	// points instead of zeroing out.
	in := healthyInput()
	in.L1RateLimit = RateLimitVerdict{Level: RateLimitDetected, Details: "429x10"}

	rep := CalculateVerdict(in)
	if rep.CriticalReason != "" {
		t.Fatalf("unexpected critical reason %q", rep.CriticalReason)
	}
	// l1 excellent 35 + cons excellent 20 + cadence good 15 + l1 RL 0 +
	// cons RL 7 = 77, fresh bonus +5 = 82 → good.
	if rep.Score != 82 {
		t.Errorf("Score = %d, want 82", rep.Score)
	}
	if rep.Tier != VerdictGood {
		t.Errorf("Tier = %v, want good", rep.Tier)
	}
}

func TestCalculateVerdict_EndToEnd(t *testing.T) {
	// L1 10ms → excellent (35), consensus 40ms → good (15), cadence 11s on
	// a 12s chain → good (15), both rate limits none (12 + 7), age 10s →
	// +5 freshness, no staleness penalty.
	// 35 + 15 + 15 + 12 + 7 + 5 = 89 → good.
	in := healthyInput()
	in.AvgConsensusLatency = 0.040

	rep := CalculateVerdict(in)
	if rep.Score != 89 {
		t.Fatalf("Score = %d, want 89", rep.Score)
	}
	if rep.Tier != VerdictGood {
		t.Errorf("Tier = %v, want good", rep.Tier)
	}
	if rep.L1LatencyTier != TierExcellent || rep.ConsensusLatencyTier != TierGood || rep.CadenceTier != TierGood {
		t.Errorf("breakdown tiers = %v/%v/%v, want excellent/good/good",
			rep.L1LatencyTier, rep.ConsensusLatencyTier, rep.CadenceTier)
	}
}

func TestCalculateVerdict_StaleAgeTripsOverride(t *testing.T) {
	// A 35s-old tip exceeds the 20s hard override, which takes precedence
	// over the accumulation path's staleness penalty. The penalty branch
	// only matters if the two age thresholds ever diverge; the override is
	// what callers observe today.
	in := healthyInput()
	in.AvgConsensusLatency = 0.040
	in.BlockAgeSeconds = 35

	rep := CalculateVerdict(in)
	if rep.Score != 0 || rep.CriticalReason == "" {
		t.Fatalf("age 35 must trip the hard override, got score %d", rep.Score)
	}
}

func TestCalculateVerdict_AdjustmentOrder(t *testing.T) {
	// The staleness penalty and freshness bonus are one atomic adjustment:
	// penalty first (floored at 0), then bonus.
	tests := []struct {
		name      string
		age       int64
		wantScore int
	}{
		// Base for this input: l1 very_slow (5) + cons very_slow (5) +
		// cadence very_slow (5) + RL none (12 + 7) = 34.
		{"fresh tip gets +5", 10, 39},
		{"boundary 15s still +5", 15, 39},
		{"16s gets +3", 16, 37},
		{"boundary 20s gets +3 (override is strictly greater)", 20, 37},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := VerdictInput{
				BlockAgeSeconds:     tc.age,
				Consensus:           ConsensusStatus{FinalityWorking: true, HeadWorking: true, Functional: true},
				L1RateLimit:         RateLimitVerdict{Level: RateLimitNone},
				ConsensusRateLimit:  RateLimitVerdict{Level: RateLimitNone},
				AvgL1Latency:        2.0,
				AvgConsensusLatency: 2.0,
				AvgBlockTime:        60.0,
				ExpectedBlockTime:   12.0,
			}
			rep := CalculateVerdict(in)
			if rep.Score != tc.wantScore {
				t.Errorf("Score = %d, want %d", rep.Score, tc.wantScore)
			}
		})
	}
}

func TestCalculateVerdict_UnmeasurableCadence(t *testing.T) {
	// Cadence 0 contributes nothing instead of being classified.
	in := healthyInput()
	in.AvgBlockTime = 0

	rep := CalculateVerdict(in)
	// 35 + 20 + 0 + 12 + 7 + 5 = 79 → good.
	if rep.Score != 79 {
		t.Errorf("Score = %d, want 79", rep.Score)
	}
	if rep.CadenceTier != TierInvalid {
		t.Errorf("CadenceTier = %v, want invalid", rep.CadenceTier)
	}
}

func TestCalculateVerdict_BestTier(t *testing.T) {
	// Perfect inputs: 35 + 20 + cadence excellent 20 + 12 + 7 + 5 = 99.
	in := healthyInput()
	in.AvgBlockTime = 9.0 // < 9.6 → excellent

	rep := CalculateVerdict(in)
	if rep.Score != 99 {
		t.Fatalf("Score = %d, want 99", rep.Score)
	}
	if rep.Tier != VerdictBest {
		t.Errorf("Tier = %v, want best", rep.Tier)
	}
}

func TestCalculateVerdict_ScoreInRange(t *testing.T) {
	// The score stays in [0, 100] across a spread of degenerate inputs.
	cases := []VerdictInput{
		{},
		{Consensus: ConsensusStatus{Functional: true, FinalityWorking: true, HeadWorking: true}},
		healthyInput(),
		{
			BlockAgeSeconds: 12,
			Consensus:       ConsensusStatus{FinalityWorking: true, HeadWorking: true, Functional: true},
			AvgL1Latency:    10, AvgConsensusLatency: 10, AvgBlockTime: 600,
		},
	}
	for _, in := range cases {
		rep := CalculateVerdict(in)
		if rep.Score < 0 || rep.Score > 100 {
			t.Errorf("Score %d out of [0,100] for input %+v", rep.Score, in)
		}
	}
}

func TestTierFromScore(t *testing.T) {
	tests := []struct {
		score int
		want  VerdictTier
	}{
		{100, VerdictBest}, {90, VerdictBest},
		{89, VerdictGood}, {75, VerdictGood},
		{74, VerdictAcceptable}, {60, VerdictAcceptable},
		{59, VerdictWorst}, {0, VerdictWorst},
	}
	for _, tc := range tests {
		if got := tierFromScore(tc.score); got != tc.want {
			t.Errorf("tierFromScore(%d) = %v, want %v", tc.score, got, tc.want)
		}
	}
}
