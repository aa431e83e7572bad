package probe

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nodepulse/nodepulse/agent/internal/health"
)

// Beacon API paths probed during a cycle.
const (
	beaconHealthPath          = "/eth/v1/node/health"
	beaconSyncingPath         = "/eth/v1/node/syncing"
	beaconIdentityPath        = "/eth/v1/node/identity"
	beaconHeadHeaderPath      = "/eth/v1/beacon/headers/head"
	beaconFinalizedHeaderPath = "/eth/v1/beacon/headers/finalized"
)

// beaconError is the JSON error body beacon endpoints return alongside (or
// instead of) a non-200 status. Its code feeds rate-limit detection.
type beaconError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// beaconGet performs one GET against the node's beacon endpoint and returns
// the body bytes together with the measurement sample. Failures are encoded
// in the sample; the body is nil when the request did not yield 200.
func (p *Prober) beaconGet(ctx context.Context, path string) ([]byte, health.Sample) {
	url := strings.TrimRight(p.node.BeaconEndpoint, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, health.Sample{}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return nil, health.Sample{}
	}
	defer resp.Body.Close()

	sample := health.Sample{Elapsed: elapsed, HTTPStatus: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, sample
	}

	if resp.StatusCode != http.StatusOK {
		// Some providers reject with 200-shaped JSON error bodies; others
		// pair the status with {code, message}. Capture the body code either
		// way so throttle detection sees it.
		var be beaconError
		if json.Unmarshal(raw, &be) == nil && be.Code != 0 {
			sample.RPCErrorCode = be.Code
		}
		return nil, sample
	}
	return raw, sample
}

// headerSlot extracts the slot string from a /eth/v1/beacon/headers/{id}
// response. Returns "" when the body does not carry one.
func headerSlot(body []byte) string {
	var out struct {
		Data struct {
			Header struct {
				Message struct {
					Slot string `json:"slot"`
				} `json:"message"`
			} `json:"header"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return ""
	}
	return out.Data.Header.Message.Slot
}

// syncingStatus extracts the is_syncing flag from /eth/v1/node/syncing.
func syncingStatus(body []byte) bool {
	var out struct {
		Data struct {
			IsSyncing bool `json:"is_syncing"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return false
	}
	return out.Data.IsSyncing
}

// peerID extracts the node's peer identity from /eth/v1/node/identity.
func peerID(body []byte) string {
	var out struct {
		Data struct {
			PeerID string `json:"peer_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return ""
	}
	return out.Data.PeerID
}
