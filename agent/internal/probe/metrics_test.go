package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nodepulse/nodepulse/agent/internal/config"
)

// gethMetrics is a realistic subset of geth's /debug/metrics/prometheus output.
const gethMetrics = `
# TYPE p2p_peers gauge
p2p_peers 47

# TYPE chain_head_block gauge
chain_head_block 1.9000002e+07

# TYPE rpc_requests counter
rpc_requests 982143
`

func TestPeerCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte(gethMetrics))
	}))
	defer srv.Close()

	p, err := New(config.Node{
		ID:                "n1",
		ExecutionEndpoint: srv.URL,
		BeaconEndpoint:    srv.URL,
		MetricsEndpoint:   srv.URL,
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if got := p.PeerCount(context.Background()); got != 47 {
		t.Errorf("PeerCount() = %d, want 47", got)
	}
}

func TestPeerCount_NoEndpoint(t *testing.T) {
	p := newTestProber(t, "http://localhost:1", "http://localhost:1")
	if got := p.PeerCount(context.Background()); got != 0 {
		t.Errorf("PeerCount() without endpoint = %d, want 0", got)
	}
}

func TestPeerCount_UnknownGauges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# TYPE something_else gauge\nsomething_else 3\n"))
	}))
	defer srv.Close()

	p, err := New(config.Node{
		ID: "n1", ExecutionEndpoint: srv.URL, BeaconEndpoint: srv.URL, MetricsEndpoint: srv.URL,
	}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if got := p.PeerCount(context.Background()); got != 0 {
		t.Errorf("PeerCount() = %d, want 0 when no known gauge is present", got)
	}
}

func TestParseMetricFamilies(t *testing.T) {
	mfs, err := parseMetricFamilies(strings.NewReader(gethMetrics))
	if err != nil {
		t.Fatalf("parseMetricFamilies() error = %v", err)
	}
	if got := sumFamily(mfs["p2p_peers"]); got != 47 {
		t.Errorf("sumFamily(p2p_peers) = %v, want 47", got)
	}
	if got := sumFamily(mfs["missing"]); got != 0 {
		t.Errorf("sumFamily(nil) = %v, want 0", got)
	}
}
