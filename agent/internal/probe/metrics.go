package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Peer-count gauge names across common clients. The first family present in
// the scrape wins.
var peerCountMetrics = []string{
	"p2p_peers",               // geth
	"libp2p_peers",            // lighthouse
	"p2p_peer_count",          // prysm (labelled by state)
	"connected_libp2p_peers",  // prysm (older)
	"beacon_connected_peers",  // teku
}

// PeerCount scrapes the node's Prometheus metrics endpoint and returns the
// current peer count, or 0 when the endpoint is unset, unreachable, or
// exposes none of the known gauges. Strictly best effort: the health verdict
// never depends on it.
func (p *Prober) PeerCount(ctx context.Context) int {
	if p.node.MetricsEndpoint == "" {
		return 0
	}
	mfs, err := p.fetchMetricFamilies(ctx, p.node.MetricsEndpoint)
	if err != nil {
		return 0
	}
	for _, name := range peerCountMetrics {
		if mf, ok := mfs[name]; ok {
			return int(sumFamily(mf))
		}
	}
	return 0
}

// fetchMetricFamilies performs an HTTP GET to url and returns parsed metric
// families.
func (p *Prober) fetchMetricFamilies(ctx context.Context, url string) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return parseMetricFamilies(resp.Body)
}

// parseMetricFamilies decodes a Prometheus text exposition from r.
// A partial result with a non-fatal parse warning is still returned.
func parseMetricFamilies(r io.Reader) (map[string]*dto.MetricFamily, error) {
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(r)
	if err != nil && len(mfs) == 0 {
		return nil, fmt.Errorf("parse prometheus text: %w", err)
	}
	return mfs, nil
}

// sumFamily adds up all counter, gauge, or untyped values in a MetricFamily.
// Returns 0 if mf is nil.
func sumFamily(mf *dto.MetricFamily) float64 {
	if mf == nil {
		return 0
	}
	var total float64
	for _, m := range mf.GetMetric() {
		switch {
		case m.Counter != nil:
			total += m.Counter.GetValue()
		case m.Gauge != nil:
			total += m.Gauge.GetValue()
		case m.Untyped != nil:
			total += m.Untyped.GetValue()
		}
	}
	return total
}
