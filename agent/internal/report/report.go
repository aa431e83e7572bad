// Package report appends one-line flat verdict reports to a local file,
// one line per probe cycle. The format is deliberately plain — timestamp,
// node, score, tier, and the critical reason if any — for grepping and for
// feeding into external tooling.
package report

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nodepulse/nodepulse/agent/internal/health"
)

// Writer appends verdict lines to a single file. Safe for concurrent use.
type Writer struct {
	mu   sync.Mutex
	path string
}

// NewWriter returns a Writer appending to path. The file is created on the
// first Append.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Append writes one report line for the result.
func (w *Writer) Append(res *health.Result) error {
	line := formatLine(res)

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("report: open %s: %w", w.path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}

// formatLine renders one flat report line, newline-terminated.
func formatLine(res *health.Result) string {
	if reason := res.Report.CriticalReason; reason != "" {
		return fmt.Sprintf("%s node=%s score=%d tier=%s critical=%q\n",
			res.Timestamp.UTC().Format(time.RFC3339), res.NodeID,
			res.Report.Score, res.Report.Tier, reason)
	}
	return fmt.Sprintf("%s node=%s score=%d tier=%s l1=%s consensus=%s cadence=%s block_age=%ds\n",
		res.Timestamp.UTC().Format(time.RFC3339), res.NodeID,
		res.Report.Score, res.Report.Tier,
		res.Report.L1LatencyTier, res.Report.ConsensusLatencyTier, res.Report.CadenceTier,
		res.BlockAgeSeconds)
}
