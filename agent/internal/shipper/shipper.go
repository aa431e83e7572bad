package shipper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/nodepulse/nodepulse/agent/internal/config"
	"github.com/nodepulse/nodepulse/pkg/types"
)

const (
	backoffInitial    = 1 * time.Second
	backoffMax        = 60 * time.Second
	backoffMultiplier = 2.0
	sendTimeout       = 10 * time.Second

	ingestPath = "/api/v1/ingest"
)

// Shipper buffers NodeSnapshots and ships them to nodepulse-server.
// Ship() is non-blocking; when the buffer is full the oldest snapshot is
// evicted. Run() must be called in a goroutine to drain the buffer.
type Shipper struct {
	cfg       config.AgentConfig
	ingestURL string
	buf       chan *types.NodeSnapshot
	client    *http.Client
}

// New creates a Shipper using the given agent config.
func New(cfg config.AgentConfig) *Shipper {
	return &Shipper{
		cfg:       cfg,
		ingestURL: strings.TrimRight(cfg.ServerEndpoint, "/") + ingestPath,
		buf:       make(chan *types.NodeSnapshot, cfg.BufferSize),
		client:    &http.Client{Timeout: sendTimeout},
	}
}

// Ship enqueues a snapshot for delivery.
// If the buffer is full the oldest entry is evicted to make room.
func (s *Shipper) Ship(snap *types.NodeSnapshot) {
	select {
	case s.buf <- snap:
	default:
		// Buffer full — drop the oldest snapshot, keep the newest.
		select {
		case <-s.buf:
			slog.Warn("shipper: buffer full, evicted oldest snapshot",
				"node", snap.NodeID, "buffer_cap", cap(s.buf))
		default:
		}
		s.buf <- snap
	}
}

// Run drains the buffer, sending snapshots to the server. Transient failures
// requeue the snapshot and back off before the next attempt. Run blocks
// until ctx is cancelled.
func (s *Shipper) Run(ctx context.Context) {
	bo := newBackoff()

	for {
		select {
		case <-ctx.Done():
			return

		case snap := <-s.buf:
			permanent, err := s.send(ctx, snap)
			if err == nil {
				bo.reset()
				slog.Debug("shipper: snapshot delivered", "node", snap.NodeID)
				continue
			}

			if permanent {
				slog.Error("shipper: server rejected snapshot, discarding",
					"node", snap.NodeID, "err", err)
				continue
			}

			// Put the snapshot back if there's room; losing it is acceptable
			// since the next cycle produces fresh data anyway.
			select {
			case s.buf <- snap:
			default:
			}

			wait := bo.next()
			slog.Warn("shipper: delivery failed, will retry",
				"endpoint", s.ingestURL, "err", err, "retry_in", wait)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}
}

// send performs one delivery attempt. The bool reports whether the failure
// is permanent — the snapshot itself was rejected and must not be retried.
func (s *Shipper) send(ctx context.Context, snap *types.NodeSnapshot) (bool, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return true, fmt.Errorf("marshal snapshot: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, s.ingestURL, bytes.NewReader(body))
	if err != nil {
		return true, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if s.cfg.ServerAuth.Mode == "apikey" && s.cfg.ServerAuth.KeyEnv != "" {
		req.Header.Set(s.cfg.ServerAuth.EffectiveHeader(), s.cfg.ServerAuth.Key())
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var ir types.IngestResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&ir); err == nil && !ir.Ok {
			slog.Warn("shipper: server accepted with warning",
				"node", snap.NodeID, "message", ir.Message)
		}
		return false, nil

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return false, fmt.Errorf("send: server status %d", resp.StatusCode)

	default:
		// Remaining 4xx: the snapshot is invalid or unauthorized — retrying
		// the same payload cannot succeed.
		return true, fmt.Errorf("send: server status %d", resp.StatusCode)
	}
}

// backoff implements truncated exponential backoff with jitter.
type backoff struct {
	current time.Duration
}

func newBackoff() *backoff {
	return &backoff{current: backoffInitial}
}

// next returns the current backoff duration and advances the internal state.
func (b *backoff) next() time.Duration {
	d := b.current
	b.current = time.Duration(float64(b.current) * backoffMultiplier)
	if b.current > backoffMax {
		b.current = backoffMax
	}
	// Add up to 25% jitter so a fleet of agents does not thunder in lockstep.
	jitter := time.Duration(rand.Int63n(int64(d) / 4)) //nolint:gosec // not crypto
	return d + jitter
}

func (b *backoff) reset() {
	b.current = backoffInitial
}
