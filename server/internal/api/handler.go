package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/nodepulse/nodepulse/server/internal/alerts"
	"github.com/nodepulse/nodepulse/server/internal/store"
)

// Handler is the HTTP handler for all /api/v1/* read endpoints.
// It reads node state from the snapshot store and returns JSON responses.
type Handler struct {
	store  *store.Store
	alerts *alerts.Engine
	mux    *http.ServeMux
}

// New creates a Handler wired to the given snapshot store and alert engine,
// and registers all routes. alertEngine may be nil; /api/v1/alerts then
// returns an empty list.
func New(st *store.Store, alertEngine *alerts.Engine) http.Handler {
	h := &Handler{store: st, alerts: alertEngine, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/nodes", h.listNodes)
	h.mux.HandleFunc("/api/v1/nodes/", h.getNode) // subtree — extracts {id}
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/api/v1/certs", h.certs)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — fleet-wide score and tier counts.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	resp := HealthResponse{
		NodeCount: len(entries),
	}
	if h.alerts != nil {
		resp.AlertCount = h.alerts.FiringCount()
	}

	if len(entries) == 0 {
		resp.Tier = "unknown"
		jsonResp(w, http.StatusOK, resp)
		return
	}

	var totalScore float64
	for _, e := range entries {
		totalScore += float64(e.Snapshot.Score)
		switch e.Snapshot.Tier {
		case "best":
			resp.BestCount++
		case "good":
			resp.GoodCount++
		case "acceptable":
			resp.AcceptableCount++
		default:
			resp.WorstCount++
		}
	}

	resp.OverallScore = totalScore / float64(len(entries))
	resp.Tier = tierFromScore(resp.OverallScore)
	jsonResp(w, http.StatusOK, resp)
}

// listNodes returns GET /api/v1/nodes — all live nodes.
func (h *Handler) listNodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	out := make([]NodeResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toNodeResponse(e))
	}
	jsonResp(w, http.StatusOK, out)
}

// getNode returns GET /api/v1/nodes/{id} — a single live node.
func (h *Handler) getNode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/nodes/")
	if id == "" {
		// Redirect bare /api/v1/nodes/ to list handler.
		h.listNodes(w, r)
		return
	}

	e, ok := h.store.Get(id)
	if !ok {
		jsonErr(w, http.StatusNotFound, "node not found")
		return
	}
	// Exclude stale entries — treat them as not found.
	if time.Since(e.UpdatedAt) > h.store.TTL() {
		jsonErr(w, http.StatusNotFound, "node not found")
		return
	}

	jsonResp(w, http.StatusOK, toNodeResponse(e))
}

// listAlerts returns GET /api/v1/alerts — firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.alerts == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// certs returns GET /api/v1/certs — TLS cert status per node endpoint.
func (h *Handler) certs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	// Collect cert info from live snapshots.
	entries := h.store.List()
	type certEntry struct {
		NodeID   string `json:"node_id"`
		Endpoint string `json:"endpoint"`
		Status   string `json:"status"`
		DaysLeft int    `json:"days_left"`
		Issuer   string `json:"issuer,omitempty"`
		NotAfter string `json:"not_after,omitempty"`
	}
	out := make([]certEntry, 0)
	for _, e := range entries {
		for _, c := range e.Snapshot.Certs {
			out = append(out, certEntry{
				NodeID:   e.Snapshot.NodeID,
				Endpoint: c.Endpoint,
				Status:   c.Status,
				DaysLeft: c.DaysLeft,
				Issuer:   c.Issuer,
				NotAfter: c.NotAfter,
			})
		}
	}
	jsonResp(w, http.StatusOK, out)
}

// snapshot returns GET /api/v1/snapshot — full JSON dump of all live nodes.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	jsonResp(w, http.StatusOK, BuildSnapshot(h.store))
}

// BuildSnapshot assembles the full-fleet snapshot payload. Shared with the
// WebSocket hub, which broadcasts the same shape.
func BuildSnapshot(st *store.Store) SnapshotResponse {
	entries := st.List()
	nodes := make([]NodeResponse, 0, len(entries))
	for _, e := range entries {
		nodes = append(nodes, toNodeResponse(e))
	}
	return SnapshotResponse{
		Nodes:       nodes,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// tierFromScore converts a 0–100 score to a tier string.
// Mirrors the thresholds in agent/internal/health.
func tierFromScore(score float64) string {
	switch {
	case score >= 90:
		return "best"
	case score >= 75:
		return "good"
	case score >= 60:
		return "acceptable"
	default:
		return "worst"
	}
}

// toNodeResponse maps a store.Entry to its JSON representation.
func toNodeResponse(e *store.Entry) NodeResponse {
	snap := e.Snapshot
	return NodeResponse{
		NodeID:         snap.NodeID,
		Network:        snap.Network,
		Score:          snap.Score,
		Tier:           snap.Tier,
		CriticalReason: snap.CriticalReason,

		L1LatencyTier:        snap.L1LatencyTier,
		ConsensusLatencyTier: snap.ConsensusLatencyTier,
		CadenceTier:          snap.CadenceTier,

		L1RateLimit:        snap.L1RateLimit,
		ConsensusRateLimit: snap.ConsensusRateLimit,
		Consensus:          snap.Consensus,

		BlockNumber:           snap.BlockNumber,
		BlockAgeSeconds:       snap.BlockAgeSeconds,
		AvgBlockTimeSeconds:   snap.AvgBlockTimeSeconds,
		AvgL1LatencyMs:        snap.AvgL1LatencyMs,
		AvgConsensusLatencyMs: snap.AvgConsensusLatencyMs,

		ChainID:       snap.ChainID,
		ClientVersion: snap.ClientVersion,
		PeerCount:     snap.PeerCount,
		Syncing:       snap.Syncing,

		UptimePct:    snap.UptimePct,
		ErrorMessage: snap.ErrorMessage,

		Diagnostics: computeDiagnostics(snap),
		LastSeen:    e.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
