package health

import (
	"log/slog"
	"sync"
	"time"
)

// uptimeWindow is the number of recent probe cycle outcomes tracked for
// uptime %.
const uptimeWindow = 20

// Cycle is the raw output of one probe cycle for a single node, handed to the
// Engine by the prober. Sample ordering within each set reflects request
// order.
type Cycle struct {
	NodeID string

	// Rate-limit probe bursts, one per endpoint.
	L1RateLimitSamples        SampleSet
	ConsensusRateLimitSamples SampleSet

	// Latency averaging samples, one set per endpoint.
	L1LatencySamples        SampleSet
	ConsensusLatencySamples SampleSet

	// Blocks holds retrieved block observations, newest first. The first
	// entry is the chain tip; consecutive entries yield the cadence.
	Blocks []BlockObservation

	// Beacon slot strings; empty or "null" means the surface failed.
	FinalizedSlot string
	HeadSlot      string

	// Node identity, best effort.
	ChainID       string
	ClientVersion string
	PeerID        string
	PeerCount     int
	Syncing       bool

	// Err is non-nil if the probe cycle itself failed before producing
	// usable measurements (connectivity, configuration).
	Err error
}

// Result is the fully-derived health snapshot for one node, ready to be
// handed to the shipper.
type Result struct {
	NodeID    string
	Timestamp time.Time

	Report    VerdictReport
	Consensus ConsensusStatus

	L1RateLimit        RateLimitVerdict
	ConsensusRateLimit RateLimitVerdict

	BlockNumber         uint64
	BlockAgeSeconds     int64
	AvgBlockTimeSeconds float64
	AvgL1LatencyMs      float64
	AvgConsensusLatMs   float64

	ChainID       string
	ClientVersion string
	PeerID        string
	PeerCount     int
	Syncing       bool

	UptimePct    float64
	ErrorMessage string
}

// Engine turns raw probe cycles into scored Results and tracks per-node
// uptime across cycles. Safe for concurrent use.
type Engine struct {
	expectedBlockTime float64

	mu     sync.Mutex // guards states and each nodeState's history
	states map[string]*nodeState
}

type nodeState struct {
	history []bool // circular buffer of cycle outcomes, newest last
}

// NewEngine returns an Engine scoring block cadence against the given
// expected inter-block time. Zero falls back to DefaultExpectedBlockTime.
func NewEngine(expectedBlockTime float64) *Engine {
	if expectedBlockTime <= 0 {
		expectedBlockTime = DefaultExpectedBlockTime
	}
	return &Engine{
		expectedBlockTime: expectedBlockTime,
		states:            make(map[string]*nodeState),
	}
}

// Process scores one probe cycle.
//
// now is passed explicitly so callers (and tests) control the clock without
// sleeping. Use time.Now() in production.
func (e *Engine) Process(c *Cycle, now time.Time) *Result {
	e.mu.Lock()
	st := e.stateFor(c.NodeID)
	st.record(c.Err == nil)
	uptime := st.uptimePct()
	e.mu.Unlock()

	out := &Result{
		NodeID:        c.NodeID,
		Timestamp:     now,
		ChainID:       c.ChainID,
		ClientVersion: c.ClientVersion,
		PeerID:        c.PeerID,
		PeerCount:     c.PeerCount,
		Syncing:       c.Syncing,
		UptimePct:     uptime,
	}

	if c.Err != nil {
		slog.Warn("health: probe cycle failed", "node", c.NodeID, "err", c.Err)
		out.ErrorMessage = c.Err.Error()
		out.BlockAgeSeconds = NoBlockAge
		out.Report = VerdictReport{Tier: VerdictWorst, CriticalReason: c.Err.Error()}
		return out
	}

	out.Consensus = ValidateConsensus(c.FinalizedSlot, c.HeadSlot)
	out.L1RateLimit = DetectRateLimit(c.L1RateLimitSamples)
	out.ConsensusRateLimit = DetectRateLimit(c.ConsensusRateLimitSamples)

	out.BlockAgeSeconds = NoBlockAge
	if len(c.Blocks) > 0 {
		tip := c.Blocks[0]
		out.BlockNumber = tip.Number
		out.BlockAgeSeconds = blockAge(tip, now)
	}
	out.AvgBlockTimeSeconds = avgBlockTime(c.Blocks)

	avgL1 := c.L1LatencySamples.AvgElapsedSeconds()
	avgCons := c.ConsensusLatencySamples.AvgElapsedSeconds()
	out.AvgL1LatencyMs = avgL1 * 1000
	out.AvgConsensusLatMs = avgCons * 1000

	out.Report = CalculateVerdict(VerdictInput{
		BlockAgeSeconds:     out.BlockAgeSeconds,
		Consensus:           out.Consensus,
		L1RateLimit:         out.L1RateLimit,
		ConsensusRateLimit:  out.ConsensusRateLimit,
		AvgL1Latency:        avgL1,
		AvgConsensusLatency: avgCons,
		AvgBlockTime:        out.AvgBlockTimeSeconds,
		ExpectedBlockTime:   e.expectedBlockTime,
	})

	return out
}

// stateFor returns the per-node state, creating it on first sight.
// Callers hold e.mu.
func (e *Engine) stateFor(id string) *nodeState {
	if st, ok := e.states[id]; ok {
		return st
	}
	st := &nodeState{}
	e.states[id] = st
	return st
}

func (st *nodeState) record(success bool) {
	if len(st.history) >= uptimeWindow {
		st.history = st.history[1:]
	}
	st.history = append(st.history, success)
}

func (st *nodeState) uptimePct() float64 {
	if len(st.history) == 0 {
		return 100 // assume up before first observation
	}
	var ok int
	for _, s := range st.history {
		if s {
			ok++
		}
	}
	return float64(ok) / float64(len(st.history)) * 100
}

// blockAge returns the tip's age in seconds relative to now, or NoBlockAge
// when the observation carries no usable timestamp.
func blockAge(tip BlockObservation, now time.Time) int64 {
	if tip.Timestamp <= 0 {
		return NoBlockAge
	}
	age := now.Unix() - tip.Timestamp
	if age < 0 {
		age = 0 // clock skew between the node and the agent
	}
	return age
}

// avgBlockTime returns the mean inter-block time in seconds across
// consecutive observations (newest first), or 0 when fewer than two blocks
// were observed.
func avgBlockTime(blocks []BlockObservation) float64 {
	if len(blocks) < 2 {
		return 0
	}
	var total, n float64
	for i := 0; i < len(blocks)-1; i++ {
		dt := blocks[i].Timestamp - blocks[i+1].Timestamp
		if dt <= 0 {
			continue // out-of-order or duplicate observation
		}
		total += float64(dt)
		n++
	}
	if n == 0 {
		return 0
	}
	return total / n
}
