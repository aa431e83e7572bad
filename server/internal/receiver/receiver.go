package receiver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/nodepulse/nodepulse/pkg/types"
	"github.com/nodepulse/nodepulse/server/internal/alerts"
	"github.com/nodepulse/nodepulse/server/internal/metrics"
	"github.com/nodepulse/nodepulse/server/internal/store"
)

// maxBodyBytes caps the ingest payload size. Snapshots are a few KB; anything
// near this limit is malformed or hostile.
const maxBodyBytes = 1 << 20

// Receiver handles snapshot ingestion from nodepulse-agent instances.
// It validates each incoming NodeSnapshot, stores it, evaluates alert rules
// and records ingest metrics.
type Receiver struct {
	store   *store.Store
	alerts  *alerts.Engine
	metrics *metrics.Metrics
}

// New creates a Receiver. alerts and metrics may be nil when the corresponding
// subsystem is disabled.
func New(st *store.Store, al *alerts.Engine, m *metrics.Metrics) *Receiver {
	return &Receiver{store: st, alerts: al, metrics: m}
}

// ServeHTTP accepts a single NodeSnapshot as a JSON POST body.
// Authentication is enforced by middleware before this is called.
func (r *Receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, types.IngestResponse{Message: "POST required"})
		return
	}

	var snap types.NodeSnapshot
	dec := json.NewDecoder(io.LimitReader(req.Body, maxBodyBytes))
	if err := dec.Decode(&snap); err != nil {
		r.reject(w, "invalid JSON payload: "+err.Error())
		return
	}
	if snap.NodeID == "" {
		r.reject(w, "node_id is required")
		return
	}

	r.store.Put(&snap)
	if r.alerts != nil {
		r.alerts.Evaluate(&snap)
	}
	if r.metrics != nil {
		r.metrics.RecordSnapshot(&snap)
	}

	slog.Debug("receiver: snapshot stored",
		"node_id", snap.NodeID,
		"network", snap.Network,
		"tier", snap.Tier,
		"score", snap.Score,
	)

	writeJSON(w, http.StatusOK, types.IngestResponse{Ok: true})
}

func (r *Receiver) reject(w http.ResponseWriter, msg string) {
	if r.metrics != nil {
		r.metrics.RecordRejected()
	}
	writeJSON(w, http.StatusBadRequest, types.IngestResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("receiver: write response", "err", err)
	}
}
