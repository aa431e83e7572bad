package health

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Sample is one measurement of a single probe request. It is collected by the
// prober and immutable once created.
//
// A failed request is represented by its fields, never by an error value:
// a transport failure is HTTPStatus 0 and Elapsed 0, a protocol error carries
// the RPC error code. This keeps every classifier total over its inputs.
type Sample struct {
	// Elapsed is the wall-clock duration of the request.
	// Zero means the request produced no measurement.
	Elapsed time.Duration

	// HTTPStatus is the HTTP status code, or 0 if no response was received.
	HTTPStatus int

	// RPCErrorCode is the error code from a JSON-RPC error object or a beacon
	// JSON error body. Zero means no protocol error was returned.
	RPCErrorCode int
}

// ElapsedSeconds returns the sample's elapsed time in seconds.
func (s Sample) ElapsedSeconds() float64 {
	return s.Elapsed.Seconds()
}

// SampleSet is an ordered sequence of Samples for one endpoint over one run.
// Ordering reflects request order, which the rate-limit detector relies on
// for its diagnostic detail strings.
type SampleSet []Sample

// AvgElapsedSeconds returns the mean elapsed time across all samples.
// An empty set yields 0 rather than a division error.
func (ss SampleSet) AvgElapsedSeconds() float64 {
	if len(ss) == 0 {
		return 0
	}
	var total float64
	for _, s := range ss {
		total += s.ElapsedSeconds()
	}
	return total / float64(len(ss))
}

// FailureRate returns the fraction of samples in [0, 1] that did not complete
// with HTTP 200. A missing status (0) counts as a failure. Empty set → 0.
//
// Note an empty set's zero rate differs from "all requests succeeded";
// callers needing that distinction must check len(ss) separately.
func (ss SampleSet) FailureRate() float64 {
	if len(ss) == 0 {
		return 0
	}
	var failed int
	for _, s := range ss {
		if s.HTTPStatus != 200 {
			failed++
		}
	}
	return float64(failed) / float64(len(ss))
}

// statusCounts renders the multiset of HTTP status codes as "429x3 200x7",
// sorted by status code. Samples without a status appear as "nonex<count>".
func (ss SampleSet) statusCounts() string {
	counts := make(map[int]int)
	for _, s := range ss {
		counts[s.HTTPStatus]++
	}
	codes := make([]int, 0, len(counts))
	for c := range counts {
		codes = append(codes, c)
	}
	sort.Ints(codes)

	parts := make([]string, 0, len(codes))
	for _, c := range codes {
		label := fmt.Sprintf("%d", c)
		if c == 0 {
			label = "none"
		}
		parts = append(parts, fmt.Sprintf("%sx%d", label, counts[c]))
	}
	return strings.Join(parts, " ")
}

// BlockObservation is one retrieved block's number and timestamp, with its
// age relative to the observation clock.
type BlockObservation struct {
	Number    uint64
	Timestamp int64 // unix seconds
	// AgeSeconds is now minus Timestamp, or NoBlockAge when no valid block
	// was retrieved.
	AgeSeconds int64
}

// NoBlockAge is the sentinel age used when no valid block was retrieved.
// It is large enough to trip every staleness check.
const NoBlockAge int64 = 999999
