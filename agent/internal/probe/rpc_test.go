package probe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nodepulse/nodepulse/agent/internal/config"
)

// rpcHandler serves canned JSON-RPC responses keyed by method.
func rpcHandler(t *testing.T, results map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		res, ok := results[req.Method]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0", "id": req.ID,
				"error": map[string]any{"code": -32601, "message": "method not found"},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": req.ID, "result": res,
		})
	}
}

func newTestProber(t *testing.T, execURL, beaconURL string) *Prober {
	t.Helper()
	p, err := New(config.Node{
		ID:                "test-node",
		ExecutionEndpoint: execURL,
		BeaconEndpoint:    beaconURL,
	}, Options{RateLimitSamples: 3, LatencySamples: 2, CadenceBlocks: 2})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestRPCCall_Success(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, map[string]any{"eth_chainId": "0x1"}))
	defer srv.Close()

	p := newTestProber(t, srv.URL, srv.URL)
	id, sample := p.chainID(context.Background())

	if id != "0x1" {
		t.Errorf("chainID = %q, want 0x1", id)
	}
	if sample.HTTPStatus != 200 {
		t.Errorf("HTTPStatus = %d, want 200", sample.HTTPStatus)
	}
	if sample.Elapsed <= 0 {
		t.Error("Elapsed should be positive for a completed request")
	}
	if sample.RPCErrorCode != 0 {
		t.Errorf("RPCErrorCode = %d, want 0", sample.RPCErrorCode)
	}
}

func TestRPCCall_ProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32005,"message":"limit exceeded"}}`))
	}))
	defer srv.Close()

	p := newTestProber(t, srv.URL, srv.URL)
	result, sample := p.rpcCall(context.Background(), "eth_chainId")

	if result != nil {
		t.Errorf("result = %s, want nil on protocol error", result)
	}
	if sample.RPCErrorCode != -32005 {
		t.Errorf("RPCErrorCode = %d, want -32005", sample.RPCErrorCode)
	}
	if sample.HTTPStatus != 200 {
		t.Errorf("HTTPStatus = %d, want 200", sample.HTTPStatus)
	}
}

func TestRPCCall_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := newTestProber(t, srv.URL, srv.URL)
	result, sample := p.rpcCall(context.Background(), "eth_chainId")

	if result != nil {
		t.Error("result should be nil on 429")
	}
	if sample.HTTPStatus != 429 {
		t.Errorf("HTTPStatus = %d, want 429", sample.HTTPStatus)
	}
}

func TestRPCCall_TransportFailure(t *testing.T) {
	// A server that is already closed: connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := newTestProber(t, url, url)
	result, sample := p.rpcCall(context.Background(), "eth_chainId")

	if result != nil {
		t.Error("result should be nil on transport failure")
	}
	// Transport failure yields the zero sample: no status, no measurement.
	if sample.HTTPStatus != 0 || sample.Elapsed != 0 {
		t.Errorf("sample = %+v, want zero sample", sample)
	}
}

func TestGetBlock(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, map[string]any{
		"eth_getBlockByNumber": map[string]string{
			"number":    "0x121eac2",
			"timestamp": "0x65f1c880",
		},
	}))
	defer srv.Close()

	p := newTestProber(t, srv.URL, srv.URL)
	blk, sample, ok := p.getBlock(context.Background(), "latest")

	if !ok {
		t.Fatal("getBlock() ok = false")
	}
	if blk.Number != 0x121eac2 {
		t.Errorf("Number = %d, want %d", blk.Number, 0x121eac2)
	}
	if blk.Timestamp != 0x65f1c880 {
		t.Errorf("Timestamp = %d, want %d", blk.Timestamp, 0x65f1c880)
	}
	if sample.HTTPStatus != 200 {
		t.Errorf("HTTPStatus = %d", sample.HTTPStatus)
	}
}

func TestGetBlock_NullResult(t *testing.T) {
	// "null" result means block not found — not ok, but still a sample.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`))
	}))
	defer srv.Close()

	p := newTestProber(t, srv.URL, srv.URL)
	_, sample, ok := p.getBlock(context.Background(), "0x0")

	if ok {
		t.Error("getBlock() ok = true for null result")
	}
	if sample.HTTPStatus != 200 {
		t.Errorf("HTTPStatus = %d, want 200", sample.HTTPStatus)
	}
}

func TestParseHexUint(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0x0", 0, false},
		{"0x1", 1, false},
		{"0x121eac2", 19000002, false},
		{"121eac2", 19000002, false}, // tolerate a missing prefix
		{"0x", 0, true},
		{"", 0, true},
		{"0xzz", 0, true},
	}
	for _, tc := range tests {
		got, err := parseHexUint(tc.in)
		if tc.wantErr != (err != nil) {
			t.Errorf("parseHexUint(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && got != tc.want {
			t.Errorf("parseHexUint(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestHexUint(t *testing.T) {
	if got := hexUint(19000002); got != "0x121eac2" {
		t.Errorf("hexUint(19000002) = %q, want 0x121eac2", got)
	}
	if got := hexUint(0); got != "0x0" {
		t.Errorf("hexUint(0) = %q, want 0x0", got)
	}
}
