// Package metrics publishes the server's operational metrics (ingest counters,
// per-node score gauges, tracked-node and firing-alert counts) in Prometheus
// exposition format on /metrics.
package metrics
