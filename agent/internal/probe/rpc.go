package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nodepulse/nodepulse/agent/internal/health"
)

// rpcRequest is a JSON-RPC 2.0 request envelope.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      int    `json:"id"`
}

// rpcError is the error object of a JSON-RPC 2.0 response.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// rpcResponse is a JSON-RPC 2.0 response envelope. Exactly one of Result and
// Error is meaningful.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// rpcCall performs one JSON-RPC request against the node's execution endpoint
// and returns the result bytes together with the measurement sample.
//
// Failures never surface as errors: a transport failure yields a zero sample,
// a protocol error carries its code in the sample. The result is nil whenever
// no usable result was returned.
func (p *Prober) rpcCall(ctx context.Context, method string, params ...any) (json.RawMessage, health.Sample) {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		return nil, health.Sample{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.node.ExecutionEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, health.Sample{}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		// Transport failure: no status, no measurement.
		return nil, health.Sample{}
	}
	defer resp.Body.Close()

	sample := health.Sample{Elapsed: elapsed, HTTPStatus: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, sample
	}

	var out rpcResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, sample
	}
	if out.Error != nil {
		sample.RPCErrorCode = out.Error.Code
		return nil, sample
	}
	if len(out.Result) == 0 || string(out.Result) == "null" {
		return nil, sample
	}
	return out.Result, sample
}

// rpcBlock is the subset of an eth_getBlockByNumber result the prober uses.
type rpcBlock struct {
	Number    string `json:"number"`
	Timestamp string `json:"timestamp"`
}

// getBlock fetches one block (tag "latest"/"finalized" or an explicit hex
// number) without transaction bodies and parses its number and timestamp.
func (p *Prober) getBlock(ctx context.Context, tag string) (health.BlockObservation, health.Sample, bool) {
	result, sample := p.rpcCall(ctx, "eth_getBlockByNumber", tag, false)
	if result == nil {
		return health.BlockObservation{}, sample, false
	}

	var blk rpcBlock
	if err := json.Unmarshal(result, &blk); err != nil {
		return health.BlockObservation{}, sample, false
	}

	number, err := parseHexUint(blk.Number)
	if err != nil {
		return health.BlockObservation{}, sample, false
	}
	ts, err := parseHexUint(blk.Timestamp)
	if err != nil {
		return health.BlockObservation{}, sample, false
	}

	return health.BlockObservation{Number: number, Timestamp: int64(ts)}, sample, true
}

// chainID fetches eth_chainId and returns the hex string as-is.
func (p *Prober) chainID(ctx context.Context) (string, health.Sample) {
	return p.rpcString(ctx, "eth_chainId")
}

// clientVersion fetches web3_clientVersion.
func (p *Prober) clientVersion(ctx context.Context) (string, health.Sample) {
	return p.rpcString(ctx, "web3_clientVersion")
}

func (p *Prober) rpcString(ctx context.Context, method string) (string, health.Sample) {
	result, sample := p.rpcCall(ctx, method)
	if result == nil {
		return "", sample
	}
	var s string
	if err := json.Unmarshal(result, &s); err != nil {
		return "", sample
	}
	return s, sample
}

// parseHexUint parses an 0x-prefixed quantity as used by the execution API.
func parseHexUint(s string) (uint64, error) {
	hex := strings.TrimPrefix(s, "0x")
	if hex == "" {
		return 0, fmt.Errorf("empty hex quantity %q", s)
	}
	return strconv.ParseUint(hex, 16, 64)
}

// hexUint renders a block number in the 0x-prefixed form the execution API
// expects for explicit block lookups.
func hexUint(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}
