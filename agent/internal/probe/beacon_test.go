package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// beaconFixtures serves canned beacon API responses keyed by path.
var beaconFixtures = map[string]string{
	beaconHealthPath:  ``,
	beaconSyncingPath: `{"data":{"head_slot":"9312766","sync_distance":"0","is_syncing":false}}`,
	beaconIdentityPath: `{"data":{"peer_id":"16Uiu2HAm8maLMjag1TAUM52zPfmLbVMGFdwUAWgoHu1HhkLQT8Iy",
		"enr":"enr:-","p2p_addresses":[],"discovery_addresses":[],"metadata":{}}}`,
	beaconHeadHeaderPath:      `{"data":{"root":"0xhead","canonical":true,"header":{"message":{"slot":"9312766","proposer_index":"1"}}}}`,
	beaconFinalizedHeaderPath: `{"data":{"root":"0xfin","canonical":true,"header":{"message":{"slot":"9312704","proposer_index":"2"}}}}`,
}

func beaconHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := beaconFixtures[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestBeaconGet_HeaderSlots(t *testing.T) {
	srv := httptest.NewServer(beaconHandler())
	defer srv.Close()

	p := newTestProber(t, srv.URL, srv.URL)

	body, sample := p.beaconGet(context.Background(), beaconFinalizedHeaderPath)
	if body == nil {
		t.Fatal("beaconGet returned nil body")
	}
	if sample.HTTPStatus != 200 {
		t.Errorf("HTTPStatus = %d", sample.HTTPStatus)
	}
	if got := headerSlot(body); got != "9312704" {
		t.Errorf("headerSlot = %q, want 9312704", got)
	}

	body, _ = p.beaconGet(context.Background(), beaconHeadHeaderPath)
	if got := headerSlot(body); got != "9312766" {
		t.Errorf("headerSlot = %q, want 9312766", got)
	}
}

func TestBeaconGet_ErrorBodyCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"code":429,"message":"rate limited"}`))
	}))
	defer srv.Close()

	p := newTestProber(t, srv.URL, srv.URL)
	body, sample := p.beaconGet(context.Background(), beaconHealthPath)

	if body != nil {
		t.Error("body should be nil for a non-200 response")
	}
	if sample.HTTPStatus != 429 {
		t.Errorf("HTTPStatus = %d, want 429", sample.HTTPStatus)
	}
	if sample.RPCErrorCode != 429 {
		t.Errorf("RPCErrorCode = %d, want 429 from the error body", sample.RPCErrorCode)
	}
}

func TestSyncingStatus(t *testing.T) {
	if syncingStatus([]byte(`{"data":{"is_syncing":true}}`)) != true {
		t.Error("is_syncing=true not detected")
	}
	if syncingStatus([]byte(`{"data":{"is_syncing":false}}`)) != false {
		t.Error("is_syncing=false misread")
	}
	if syncingStatus([]byte(`not json`)) != false {
		t.Error("malformed body must degrade to false")
	}
}

func TestPeerID(t *testing.T) {
	got := peerID([]byte(`{"data":{"peer_id":"16Uiu2HAmTest"}}`))
	if got != "16Uiu2HAmTest" {
		t.Errorf("peerID = %q", got)
	}
	if peerID([]byte(`{}`)) != "" {
		t.Error("missing peer_id must yield empty string")
	}
}
