package health

import (
	"strings"
	"testing"
	"time"
)

// ok returns a healthy sample with the given elapsed time.
func ok(elapsed time.Duration) Sample {
	return Sample{Elapsed: elapsed, HTTPStatus: 200}
}

func TestDetectRateLimit_Detected(t *testing.T) {
	tests := []struct {
		name    string
		samples SampleSet
	}{
		{
			name: "single 429 among healthy samples",
			samples: SampleSet{
				ok(10 * time.Millisecond), ok(12 * time.Millisecond),
				{Elapsed: 5 * time.Millisecond, HTTPStatus: 429},
				ok(11 * time.Millisecond),
			},
		},
		{
			name:    "503 service unavailable",
			samples: SampleSet{{HTTPStatus: 503}},
		},
		{
			name:    "402 metered provider",
			samples: SampleSet{ok(time.Millisecond), {HTTPStatus: 402}},
		},
		{
			name:    "403 quota enforcement",
			samples: SampleSet{{HTTPStatus: 403}},
		},
		{
			name: "execution throttle error code on an otherwise clean burst",
			samples: SampleSet{
				ok(time.Millisecond),
				{Elapsed: time.Millisecond, HTTPStatus: 200, RPCErrorCode: -32005},
			},
		},
		{
			name:    "-32029 too many requests",
			samples: SampleSet{{HTTPStatus: 200, RPCErrorCode: -32029}},
		},
		{
			name:    "beacon error body code 429",
			samples: SampleSet{{HTTPStatus: 200, RPCErrorCode: 429}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := DetectRateLimit(tc.samples)
			if v.Level != RateLimitDetected {
				t.Fatalf("Level = %v, want detected (details: %s)", v.Level, v.Details)
			}
			if v.Details == "" {
				t.Error("detected verdict must carry evidence details")
			}
		})
	}
}

func TestDetectRateLimit_Likely(t *testing.T) {
	// 3 failures out of 10 = 30% > 20% threshold; none of the failing
	// statuses is a throttle code, so detection must not fire.
	samples := SampleSet{
		ok(time.Millisecond), ok(time.Millisecond), ok(time.Millisecond),
		ok(time.Millisecond), ok(time.Millisecond), ok(time.Millisecond),
		{HTTPStatus: 500}, {HTTPStatus: 500}, {HTTPStatus: 0},
		ok(time.Millisecond),
	}

	v := DetectRateLimit(samples)
	if v.Level != RateLimitLikely {
		t.Fatalf("Level = %v, want likely (details: %s)", v.Level, v.Details)
	}
	if !strings.Contains(v.Details, "30%") {
		t.Errorf("details should record the failure rate, got %q", v.Details)
	}
}

func TestDetectRateLimit_FailureRateBoundary(t *testing.T) {
	// Exactly 20% (2/10) does not exceed the threshold — not likely.
	samples := SampleSet{
		ok(time.Millisecond), ok(time.Millisecond), ok(time.Millisecond),
		ok(time.Millisecond), ok(time.Millisecond), ok(time.Millisecond),
		ok(time.Millisecond), ok(time.Millisecond),
		{HTTPStatus: 500}, {HTTPStatus: 500},
	}

	if v := DetectRateLimit(samples); v.Level != RateLimitNone {
		t.Errorf("Level at exactly 20%% failures = %v, want none", v.Level)
	}
}

func TestDetectRateLimit_Possible(t *testing.T) {
	// All requests succeed but average 3.5s — shaping, not rejection.
	samples := SampleSet{
		ok(3500 * time.Millisecond),
		ok(3500 * time.Millisecond),
		ok(3500 * time.Millisecond),
	}

	v := DetectRateLimit(samples)
	if v.Level != RateLimitPossible {
		t.Fatalf("Level = %v, want possible (details: %s)", v.Level, v.Details)
	}
}

func TestDetectRateLimit_PriorityOrder(t *testing.T) {
	// A sample set that satisfies every rule at once must report detected:
	// first match wins, rules are never combined.
	samples := SampleSet{
		{Elapsed: 5 * time.Second, HTTPStatus: 429},
		{Elapsed: 5 * time.Second, HTTPStatus: 500},
		{Elapsed: 5 * time.Second, HTTPStatus: 0},
	}

	if v := DetectRateLimit(samples); v.Level != RateLimitDetected {
		t.Errorf("Level = %v, want detected despite likely/possible also matching", v.Level)
	}
}

func TestDetectRateLimit_Empty(t *testing.T) {
	// Empty-set policy: no samples yields none with zero rates, not a panic.
	// This differs from "all requests succeeded" — callers needing that
	// distinction check the sample count.
	v := DetectRateLimit(nil)
	if v.Level != RateLimitNone {
		t.Errorf("Level = %v, want none", v.Level)
	}

	var empty SampleSet
	if got := empty.AvgElapsedSeconds(); got != 0 {
		t.Errorf("AvgElapsedSeconds() on empty set = %v, want 0", got)
	}
	if got := empty.FailureRate(); got != 0 {
		t.Errorf("FailureRate() on empty set = %v, want 0", got)
	}
}

func TestDetectRateLimit_CleanBurst(t *testing.T) {
	samples := SampleSet{
		ok(8 * time.Millisecond), ok(9 * time.Millisecond),
		ok(10 * time.Millisecond), ok(11 * time.Millisecond),
	}
	if v := DetectRateLimit(samples); v.Level != RateLimitNone {
		t.Errorf("Level = %v, want none", v.Level)
	}
}

func TestStatusCounts(t *testing.T) {
	samples := SampleSet{
		{HTTPStatus: 200}, {HTTPStatus: 200}, {HTTPStatus: 429}, {HTTPStatus: 0},
	}
	got := samples.statusCounts()
	want := "nonex1 200x2 429x1"
	if got != want {
		t.Errorf("statusCounts() = %q, want %q", got, want)
	}
}
