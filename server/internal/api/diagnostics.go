package api

import (
	"fmt"
	"strings"

	"github.com/nodepulse/nodepulse/pkg/types"
)

// DiagnosticHint is one human-readable insight about a node's health.
// The UI displays these as chips on the node card; clicking one shows
// Detail — written like an AI assistant explaining the problem in plain English.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier (used for dedup/ordering).
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label shown on the chip (≤ 5 words).
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
	// Value is an optional numeric value associated with this hint (e.g. block age).
	Value *float64 `json:"value,omitempty"`
}

// computeDiagnostics derives human-readable diagnostic hints from a snapshot.
// Diagnostics are ordered: critical first, then warnings, then info.
func computeDiagnostics(snap *types.NodeSnapshot) []DiagnosticHint {
	var hints []DiagnosticHint

	// ── Probe failure ────────────────────────────────────────────────────────
	if snap.ErrorMessage != "" {
		detail := fmt.Sprintf(
			"The agent couldn't collect data from this node. "+
				"It last tried and got: \"%s\". "+
				"Check that the RPC endpoint is reachable, your credentials are correct, "+
				"and the node process is running. Until this is resolved, all health metrics "+
				"for this node are unavailable.",
			snap.ErrorMessage,
		)
		hints = append(hints, DiagnosticHint{
			Key:    "probe_failed",
			Level:  "critical",
			Title:  "Can't reach node",
			Detail: detail,
		})
		return hints // no point computing further without data
	}

	// ── Hard override ────────────────────────────────────────────────────────
	if snap.CriticalReason != "" {
		hints = append(hints, DiagnosticHint{
			Key:   "critical_override",
			Level: "critical",
			Title: "Score zeroed",
			Detail: fmt.Sprintf(
				"A critical failure forced this node's score to zero: %s. "+
					"Hard failures bypass the weighted scoring entirely because the node "+
					"cannot be doing useful work in this state. Fix the underlying issue "+
					"and the score will recover on the next probe cycle.",
				snap.CriticalReason,
			),
		})
	}

	// ── Block staleness ──────────────────────────────────────────────────────
	// 999999 is the agent's "no block observed" sentinel, not a real age.
	if snap.BlockAgeSeconds > 0 && snap.BlockAgeSeconds < 999999 {
		age := float64(snap.BlockAgeSeconds)
		var level, title, detail string
		switch {
		case snap.BlockAgeSeconds > 30:
			level = "critical"
			title = fmt.Sprintf("Tip %ds old", snap.BlockAgeSeconds)
			detail = fmt.Sprintf(
				"The newest block this node knows about is %d seconds old. "+
					"On a chain that produces a block roughly every 12 seconds, this node "+
					"has missed at least two block intervals — it is falling behind the chain. "+
					"Check peer connectivity and whether the execution client is resource starved "+
					"(CPU, disk I/O). A node serving stale state gives wrong answers to balance "+
					"and contract queries.",
				snap.BlockAgeSeconds,
			)
		case snap.BlockAgeSeconds > 15:
			level = "warning"
			title = fmt.Sprintf("Tip %ds old", snap.BlockAgeSeconds)
			detail = fmt.Sprintf(
				"The chain tip is %d seconds old — slightly beyond a normal block interval. "+
					"One slow block is often just the chain itself, but watch whether this "+
					"number keeps growing across probe cycles.",
				snap.BlockAgeSeconds,
			)
		}
		if level != "" {
			hints = append(hints, DiagnosticHint{Key: "block_age", Level: level, Title: title, Detail: detail, Value: &age})
		}
	}

	// ── Consensus layer ──────────────────────────────────────────────────────
	if !snap.Consensus.Functional && (snap.Consensus.FinalityWorking || snap.Consensus.HeadWorking) {
		broken := "finalized checkpoint"
		if snap.Consensus.FinalityWorking {
			broken = "head block header"
		}
		hints = append(hints, DiagnosticHint{
			Key:   "consensus_partial",
			Level: "warning",
			Title: "Beacon API degraded",
			Detail: fmt.Sprintf(
				"The beacon node answered one API surface but not the other — the %s "+
					"query returned no usable slot. A half-working beacon API usually means "+
					"the consensus client is mid-sync or its backfill is incomplete. "+
					"Check the client's sync status and logs.",
				broken,
			),
		})
	}

	// ── Rate limiting ────────────────────────────────────────────────────────
	hints = append(hints, rateLimitHint("l1_rate_limit", "execution RPC", snap.L1RateLimit)...)
	hints = append(hints, rateLimitHint("consensus_rate_limit", "beacon API", snap.ConsensusRateLimit)...)

	// ── Syncing ──────────────────────────────────────────────────────────────
	if snap.Syncing {
		hints = append(hints, DiagnosticHint{
			Key:   "syncing",
			Level: "warning",
			Title: "Node is syncing",
			Detail: "The consensus client reports it is still syncing. While syncing, the node " +
				"serves data from an old view of the chain, so responses may be stale or " +
				"incomplete. No action needed if this is a fresh node — just wait for sync " +
				"to complete. If an established node re-enters sync, look for a restart or " +
				"a long offline period in its logs.",
		})
	}

	// ── Peer count ───────────────────────────────────────────────────────────
	if snap.PeerCount > 0 && snap.PeerCount < 10 {
		v := float64(snap.PeerCount)
		hints = append(hints, DiagnosticHint{
			Key:   "low_peers",
			Level: "warning",
			Title: fmt.Sprintf("Only %d peers", snap.PeerCount),
			Detail: fmt.Sprintf(
				"This node has %d peers, which is on the low side. Fewer peers means "+
					"slower block propagation and a higher chance of falling behind the chain. "+
					"Check that the P2P port is reachable from outside (port forwarding, "+
					"firewall rules) and that the node's external IP is advertised correctly.",
				snap.PeerCount,
			),
			Value: &v,
		})
	}

	// ── Uptime ───────────────────────────────────────────────────────────────
	if snap.UptimePct < 100 && snap.UptimePct > 0 {
		v := snap.UptimePct
		var level string
		switch {
		case snap.UptimePct < 70:
			level = "critical"
		case snap.UptimePct < 90:
			level = "warning"
		default:
			level = "info"
		}
		hints = append(hints, DiagnosticHint{
			Key:   "uptime",
			Level: level,
			Title: fmt.Sprintf("%.0f%% uptime", snap.UptimePct),
			Detail: fmt.Sprintf(
				"This node completed %.0f%% of recent probe cycles successfully "+
					"(tracked over the agent's last 20 attempts). "+
					"Anything below 100%% means the agent couldn't reach it at least once. "+
					"Look for process restarts, OOM kills, or network issues. "+
					"A brief dip is often a restart; a sustained dip indicates instability.",
				snap.UptimePct,
			),
			Value: &v,
		})
	}

	// ── Certificates ─────────────────────────────────────────────────────────
	for _, c := range snap.Certs {
		if c.Status != "expiring" && c.Status != "expired" {
			continue
		}
		v := float64(c.DaysLeft)
		level := "warning"
		title := fmt.Sprintf("Cert expires in %dd", c.DaysLeft)
		if c.Status == "expired" {
			level = "critical"
			title = "Cert expired"
		}
		hints = append(hints, DiagnosticHint{
			Key:   "cert_" + c.Endpoint,
			Level: level,
			Title: title,
			Detail: fmt.Sprintf(
				"The TLS certificate for %s is %s (%d days left). "+
					"Once it expires, agents and any other TLS clients will refuse to connect "+
					"and this node will effectively go dark. Renew the certificate before then.",
				c.Endpoint, c.Status, c.DaysLeft,
			),
			Value: &v,
		})
	}

	// ── Client-specific guidance ─────────────────────────────────────────────
	hints = append(hints, clientHints(snap)...)

	// ── All clear ────────────────────────────────────────────────────────────
	if len(hints) == 0 {
		score := float64(snap.Score)
		hints = append(hints, DiagnosticHint{
			Key:   "healthy",
			Level: "ok",
			Title: "All clear",
			Detail: fmt.Sprintf(
				"This node is fully operational with a health score of %d/100. "+
					"The chain tip is fresh, both RPC surfaces respond quickly, and no "+
					"rate limiting was detected. Keep an eye on the peer count trend — "+
					"a slow decline can foreshadow connectivity problems before any "+
					"score change shows up.",
				snap.Score,
			),
			Value: &score,
		})
	}

	return hints
}

// rateLimitHint returns a hint for one endpoint's rate-limit verdict, or nothing
// when the level is "none".
func rateLimitHint(key, surface string, rl types.RateLimitStatus) []DiagnosticHint {
	switch rl.Level {
	case "detected":
		return []DiagnosticHint{{
			Key:   key,
			Level: "critical",
			Title: "Rate limited",
			Detail: fmt.Sprintf(
				"The %s is actively rejecting requests with throttle responses (%s). "+
					"If this is a hosted provider, you have hit your plan's request quota — "+
					"upgrade the plan or spread load across providers. If this is your own node, "+
					"check for a reverse proxy or middleware enforcing limits in front of it.",
				surface, rl.Details,
			),
		}}
	case "likely":
		return []DiagnosticHint{{
			Key:   key,
			Level: "warning",
			Title: "Likely throttled",
			Detail: fmt.Sprintf(
				"More than a fifth of probe requests against the %s failed (%s). "+
					"No explicit throttle code was returned, but silent request dropping is how "+
					"some providers enforce limits. Watch whether the failure rate grows.",
				surface, rl.Details,
			),
		}}
	case "possible":
		return []DiagnosticHint{{
			Key:   key,
			Level: "info",
			Title: "Slow responses",
			Detail: fmt.Sprintf(
				"Requests against the %s are succeeding but averaging over three seconds (%s). "+
					"Queueing delay like this is sometimes soft throttling, and sometimes just "+
					"an overloaded node. Check the node's CPU and disk I/O before blaming the provider.",
				surface, rl.Details,
			),
		}}
	default:
		return nil
	}
}

// clientHints returns client-implementation-specific diagnostic hints, keyed
// off the reported client version string.
func clientHints(snap *types.NodeSnapshot) []DiagnosticHint {
	var hints []DiagnosticHint
	cv := strings.ToLower(snap.ClientVersion)

	switch {
	case strings.Contains(cv, "geth"):
		if snap.BlockAgeSeconds > 30 {
			hints = append(hints, DiagnosticHint{
				Key:   "geth_stall_tip",
				Level: "info",
				Title: "Geth stall check",
				Detail: "For a stalled Geth node, start with `eth_syncing` and the peer list " +
					"(`admin.peers` in the console). If peers are healthy but blocks aren't " +
					"importing, check disk throughput — Geth's state trie writes are I/O bound " +
					"and a saturated disk stalls block import long before CPU is a problem. " +
					"chaindata on spinning disks or network volumes is the usual culprit.",
			})
		}

	case strings.Contains(cv, "lighthouse"):
		if snap.Syncing {
			hints = append(hints, DiagnosticHint{
				Key:   "lighthouse_sync_tip",
				Level: "info",
				Title: "Lighthouse sync check",
				Detail: "Lighthouse logs its sync progress with distance-to-head. If sync never " +
					"completes, verify the execution endpoint it pairs with is itself synced — " +
					"a consensus client cannot finish optimistic sync against a lagging " +
					"execution client. `curl localhost:5052/eth/v1/node/syncing` shows the " +
					"current distance.",
			})
		}

	case strings.Contains(cv, "nethermind"):
		if snap.BlockAgeSeconds > 30 {
			hints = append(hints, DiagnosticHint{
				Key:   "nethermind_pruning_tip",
				Level: "info",
				Title: "Nethermind pruning check",
				Detail: "Nethermind's full pruning pauses block processing under default settings " +
					"when disk pressure is high. Check the logs for pruning activity around the " +
					"time the tip went stale, and consider scheduling pruning or adding disk " +
					"headroom.",
			})
		}
	}

	return hints
}
