package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nodepulse/nodepulse/agent/internal/health"
)

// fakeExecutionNode serves a minimal but consistent execution JSON-RPC API:
// a fixed tip with 12-second block spacing.
func fakeExecutionNode(t *testing.T, tipNumber uint64, tipTimestamp int64) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var result any
		switch req.Method {
		case "eth_chainId":
			result = "0x1"
		case "web3_clientVersion":
			result = "Geth/v1.13.14-stable/linux-amd64/go1.21.7"
		case "eth_getBlockByNumber":
			tag, _ := req.Params[0].(string)
			number := tipNumber
			if tag != "latest" && tag != "finalized" {
				n, err := parseHexUint(tag)
				if err != nil {
					http.Error(w, "bad tag", http.StatusBadRequest)
					return
				}
				number = n
			}
			// Older blocks are spaced exactly 12s apart.
			ts := tipTimestamp - int64(tipNumber-number)*12
			result = map[string]string{
				"number":    hexUint(number),
				"timestamp": fmt.Sprintf("0x%x", ts),
			}
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]any{"code": -32601, "message": "method not found"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}
}

func TestProbe_FullCycle(t *testing.T) {
	tipTS := time.Now().Unix() - 6
	exec := httptest.NewServer(fakeExecutionNode(t, 19_000_002, tipTS))
	defer exec.Close()
	beacon := httptest.NewServer(beaconHandler())
	defer beacon.Close()

	p := newTestProber(t, exec.URL, beacon.URL)
	c := p.Probe(context.Background())

	if c.NodeID != "test-node" {
		t.Errorf("NodeID = %q", c.NodeID)
	}
	if len(c.L1RateLimitSamples) != 3 {
		t.Errorf("L1RateLimitSamples = %d, want 3", len(c.L1RateLimitSamples))
	}
	if len(c.L1LatencySamples) != 2 {
		t.Errorf("L1LatencySamples = %d, want 2", len(c.L1LatencySamples))
	}
	if len(c.ConsensusRateLimitSamples) != 3 {
		t.Errorf("ConsensusRateLimitSamples = %d, want 3", len(c.ConsensusRateLimitSamples))
	}
	if c.ChainID != "0x1" {
		t.Errorf("ChainID = %q, want 0x1", c.ChainID)
	}
	if c.ClientVersion == "" {
		t.Error("ClientVersion not captured")
	}
	if len(c.Blocks) != 2 {
		t.Fatalf("Blocks = %d, want 2 (cadence_blocks)", len(c.Blocks))
	}
	if c.Blocks[0].Number != 19_000_002 || c.Blocks[1].Number != 19_000_001 {
		t.Errorf("block numbers = %d, %d", c.Blocks[0].Number, c.Blocks[1].Number)
	}
	if dt := c.Blocks[0].Timestamp - c.Blocks[1].Timestamp; dt != 12 {
		t.Errorf("inter-block time = %d, want 12", dt)
	}
	if c.FinalizedSlot != "9312704" || c.HeadSlot != "9312766" {
		t.Errorf("slots = %q / %q", c.FinalizedSlot, c.HeadSlot)
	}
	if c.Syncing {
		t.Error("Syncing = true, fixture says false")
	}
	if c.PeerID == "" {
		t.Error("PeerID not captured")
	}

	// The cycle must produce a clean verdict end to end.
	e := health.NewEngine(12)
	out := e.Process(c, time.Now())
	if out.Report.CriticalReason != "" {
		t.Errorf("unexpected critical reason %q", out.Report.CriticalReason)
	}
	if out.Report.Score < 60 {
		t.Errorf("Score = %d, want a healthy local-loopback score", out.Report.Score)
	}
}

func TestProbe_DeadNode(t *testing.T) {
	// Both endpoints refuse connections — the cycle still returns, with
	// zero samples everywhere and no blocks or slots.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := newTestProber(t, url, url)
	c := p.Probe(context.Background())

	if len(c.L1RateLimitSamples) != 3 {
		t.Fatalf("samples = %d, want 3 zero samples", len(c.L1RateLimitSamples))
	}
	for i, s := range c.L1RateLimitSamples {
		if s.HTTPStatus != 0 || s.Elapsed != 0 {
			t.Errorf("sample[%d] = %+v, want zero sample", i, s)
		}
	}
	if len(c.Blocks) != 0 {
		t.Errorf("Blocks = %d, want 0", len(c.Blocks))
	}
	if c.FinalizedSlot != "" || c.HeadSlot != "" {
		t.Errorf("slots should be empty, got %q / %q", c.FinalizedSlot, c.HeadSlot)
	}

	// And the engine turns that into a zero-score verdict.
	out := health.NewEngine(12).Process(c, time.Now())
	if out.Report.Score != 0 {
		t.Errorf("Score = %d, want 0 for a dead node", out.Report.Score)
	}
}

func TestProbe_ContextCancelled(t *testing.T) {
	exec := httptest.NewServer(fakeExecutionNode(t, 100, time.Now().Unix()))
	defer exec.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestProber(t, exec.URL, exec.URL)
	c := p.Probe(ctx)

	// A cancelled context cuts the cycle short without panicking.
	if len(c.L1RateLimitSamples) > 1 {
		t.Errorf("samples after cancel = %d", len(c.L1RateLimitSamples))
	}
}
