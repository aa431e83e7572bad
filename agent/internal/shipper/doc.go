// Package shipper delivers NodeSnapshots to nodepulse-server over HTTP.
//
// Ship() is non-blocking; snapshots are buffered in memory and the oldest is
// evicted when the buffer is full. Run() drains the buffer, retrying
// transient failures (network errors, 5xx, 429) with truncated exponential
// backoff and jitter, and discarding snapshots the server permanently
// rejects (other 4xx).
package shipper
