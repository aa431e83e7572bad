package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nodepulse/nodepulse/pkg/types"
)

// Metrics exposes the server's own operational metrics in Prometheus format.
// All collectors are registered on a private registry so the /metrics output
// stays limited to what the server deliberately publishes.
type Metrics struct {
	registry *prometheus.Registry

	snapshotsReceived *prometheus.CounterVec
	snapshotsRejected prometheus.Counter
	nodeScore         *prometheus.GaugeVec
	nodeBlockAge      *prometheus.GaugeVec
	nodeUptime        *prometheus.GaugeVec
}

// New creates a Metrics instance. nodesTracked and alertsFiring are sampled
// on scrape via the given callbacks.
func New(nodesTracked, alertsFiring func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		snapshotsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nodepulse_snapshots_received_total",
			Help: "Snapshots accepted by the ingest endpoint, by node and tier.",
		}, []string{"node_id", "tier"}),
		snapshotsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nodepulse_snapshots_rejected_total",
			Help: "Ingest requests rejected as malformed or invalid.",
		}),
		nodeScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nodepulse_node_score",
			Help: "Latest composite health score per node (0-100).",
		}, []string{"node_id"}),
		nodeBlockAge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nodepulse_node_block_age_seconds",
			Help: "Latest chain tip age per node.",
		}, []string{"node_id"}),
		nodeUptime: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nodepulse_node_uptime_pct",
			Help: "Probe cycle success percentage per node over the agent's window.",
		}, []string{"node_id"}),
	}

	reg.MustRegister(
		m.snapshotsReceived,
		m.snapshotsRejected,
		m.nodeScore,
		m.nodeBlockAge,
		m.nodeUptime,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "nodepulse_nodes_tracked",
			Help: "Nodes currently held in the snapshot store.",
		}, func() float64 { return float64(nodesTracked()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "nodepulse_alerts_firing",
			Help: "Alerts currently in the firing state.",
		}, func() float64 { return float64(alertsFiring()) }),
	)

	return m
}

// RecordSnapshot updates per-node gauges and the received counter for one
// accepted snapshot.
func (m *Metrics) RecordSnapshot(snap *types.NodeSnapshot) {
	m.snapshotsReceived.WithLabelValues(snap.NodeID, snap.Tier).Inc()
	m.nodeScore.WithLabelValues(snap.NodeID).Set(float64(snap.Score))
	m.nodeBlockAge.WithLabelValues(snap.NodeID).Set(float64(snap.BlockAgeSeconds))
	m.nodeUptime.WithLabelValues(snap.NodeID).Set(snap.UptimePct)
}

// RecordRejected counts one rejected ingest request.
func (m *Metrics) RecordRejected() {
	m.snapshotsRejected.Inc()
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
