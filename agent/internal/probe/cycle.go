package probe

import (
	"context"
	"time"

	"github.com/nodepulse/nodepulse/agent/internal/health"
)

// Probe runs one full probe cycle against the node and returns the raw
// measurements for the health engine. Requests within the cycle run
// sequentially with the configured inter-request delay; sample ordering
// within each set reflects request order.
//
// Probe itself never returns an error: individual request failures are
// encoded in the samples and missing fields, and the engine degrades the
// verdict accordingly. Only ctx cancellation cuts the cycle short, leaving
// whatever was collected so far in the Cycle.
func (p *Prober) Probe(ctx context.Context) *health.Cycle {
	c := &health.Cycle{NodeID: p.node.ID}

	// Execution rate-limit burst: cheap identical requests. The first
	// successful response doubles as the chain ID capture.
	for i := 0; i < p.opts.RateLimitSamples; i++ {
		if !p.pace(ctx, i) {
			return c
		}
		id, sample := p.chainID(ctx)
		c.L1RateLimitSamples = append(c.L1RateLimitSamples, sample)
		if c.ChainID == "" && id != "" {
			c.ChainID = id
		}
	}

	// Execution latency burst.
	for i := 0; i < p.opts.LatencySamples; i++ {
		if !p.pace(ctx, i) {
			return c
		}
		_, sample := p.chainID(ctx)
		c.L1LatencySamples = append(c.L1LatencySamples, sample)
	}

	if version, _ := p.clientVersion(ctx); version != "" {
		c.ClientVersion = version
	}

	// Chain tip plus enough prior blocks for a cadence measurement.
	if tip, _, ok := p.getBlock(ctx, "latest"); ok {
		c.Blocks = append(c.Blocks, tip)
		for i := 1; i < p.opts.CadenceBlocks && tip.Number >= uint64(i); i++ {
			if !p.pace(ctx, i) {
				return c
			}
			if blk, _, ok := p.getBlock(ctx, hexUint(tip.Number-uint64(i))); ok {
				c.Blocks = append(c.Blocks, blk)
			}
		}
	}

	// Beacon rate-limit burst against the cheapest endpoint.
	for i := 0; i < p.opts.RateLimitSamples; i++ {
		if !p.pace(ctx, i) {
			return c
		}
		_, sample := p.beaconGet(ctx, beaconHealthPath)
		c.ConsensusRateLimitSamples = append(c.ConsensusRateLimitSamples, sample)
	}

	// Beacon latency burst.
	for i := 0; i < p.opts.LatencySamples; i++ {
		if !p.pace(ctx, i) {
			return c
		}
		body, sample := p.beaconGet(ctx, beaconSyncingPath)
		c.ConsensusLatencySamples = append(c.ConsensusLatencySamples, sample)
		if body != nil {
			c.Syncing = syncingStatus(body)
		}
	}

	// Both header surfaces are required for a functional consensus layer.
	if body, _ := p.beaconGet(ctx, beaconFinalizedHeaderPath); body != nil {
		c.FinalizedSlot = headerSlot(body)
	}
	if body, _ := p.beaconGet(ctx, beaconHeadHeaderPath); body != nil {
		c.HeadSlot = headerSlot(body)
	}

	// Identity and peer count are diagnostics only.
	if body, _ := p.beaconGet(ctx, beaconIdentityPath); body != nil {
		c.PeerID = peerID(body)
	}
	c.PeerCount = p.PeerCount(ctx)

	return c
}

// pace sleeps the configured inter-request delay before every request except
// the first of a burst. Returns false when ctx was cancelled.
func (p *Prober) pace(ctx context.Context, i int) bool {
	if i == 0 || p.opts.RequestDelay == 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(p.opts.RequestDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
