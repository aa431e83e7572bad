package health

import (
	"fmt"
	"sort"
	"strings"
)

// RateLimitLevel is the confidence level of a rate-limit detection.
type RateLimitLevel int

const (
	RateLimitNone RateLimitLevel = iota
	RateLimitPossible
	RateLimitLikely
	RateLimitDetected
)

// String returns the wire/display name of the level.
func (l RateLimitLevel) String() string {
	switch l {
	case RateLimitPossible:
		return "possible"
	case RateLimitLikely:
		return "likely"
	case RateLimitDetected:
		return "detected"
	default:
		return "none"
	}
}

// RateLimitVerdict is the outcome of rate-limit detection for one endpoint.
// Details records the triggering evidence for diagnostics.
type RateLimitVerdict struct {
	Level   RateLimitLevel
	Details string
}

// HTTP status codes that directly indicate server-side throttling or refusal.
var throttleStatuses = map[int]bool{
	429: true, // Too Many Requests
	503: true, // Service Unavailable
	402: true, // Payment Required — metered providers
	403: true, // Forbidden — key-based quota enforcement
}

// Protocol-level error codes that indicate throttling. The negative values
// are the execution-layer "too many requests" family; 429 and 503 appear when
// a beacon endpoint returns its error body instead of an HTTP-level rejection.
var throttleRPCCodes = map[int]bool{
	-32029: true,
	-33000: true,
	-33200: true,
	-32005: true,
	429:    true,
	503:    true,
}

// failureRateThreshold is the fraction of non-200 samples above which
// throttling is considered likely even without an explicit throttle code.
const failureRateThreshold = 0.20

// slowAvgThreshold is the average elapsed time in seconds above which
// throttling is considered possible (providers that shape rather than reject).
const slowAvgThreshold = 3.0

// DetectRateLimit classifies one endpoint's sample set for rate limiting.
//
// Rules apply in priority order and are never combined:
//
//  1. detected — any sample carries a throttle HTTP status or error code.
//  2. likely   — more than 20% of samples failed (non-200 or no status).
//  3. possible — average elapsed time exceeds 3 seconds.
//  4. none     — otherwise.
//
// An empty set yields none with zero rates; it never panics.
func DetectRateLimit(samples SampleSet) RateLimitVerdict {
	if codes := throttleEvidence(samples); len(codes) > 0 {
		return RateLimitVerdict{
			Level: RateLimitDetected,
			Details: fmt.Sprintf("throttle codes %s; statuses %s",
				formatCodes(codes), samples.statusCounts()),
		}
	}

	if rate := samples.FailureRate(); rate > failureRateThreshold {
		return RateLimitVerdict{
			Level: RateLimitLikely,
			Details: fmt.Sprintf("failure rate %.0f%% over %d samples; statuses %s",
				rate*100, len(samples), samples.statusCounts()),
		}
	}

	if avg := samples.AvgElapsedSeconds(); avg > slowAvgThreshold {
		return RateLimitVerdict{
			Level:   RateLimitPossible,
			Details: fmt.Sprintf("average elapsed %.2fs over %d samples", avg, len(samples)),
		}
	}

	return RateLimitVerdict{Level: RateLimitNone}
}

// throttleEvidence collects the distinct throttle status and error codes seen
// across the samples, in ascending order.
func throttleEvidence(samples SampleSet) []int {
	seen := make(map[int]bool)
	for _, s := range samples {
		if throttleStatuses[s.HTTPStatus] {
			seen[s.HTTPStatus] = true
		}
		if s.RPCErrorCode != 0 && throttleRPCCodes[s.RPCErrorCode] {
			seen[s.RPCErrorCode] = true
		}
	}
	codes := make([]int, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

func formatCodes(codes []int) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
