package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nodepulse/nodepulse/agent/internal/health"
)

func TestWriter_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdicts.log")
	w := NewWriter(path)

	res := &health.Result{
		NodeID:          "mainnet-1",
		Timestamp:       time.Unix(1_700_000_000, 0),
		BlockAgeSeconds: 8,
		Report: health.VerdictReport{
			Score:                89,
			Tier:                 health.VerdictGood,
			L1LatencyTier:        health.TierExcellent,
			ConsensusLatencyTier: health.TierGood,
			CadenceTier:          health.TierGood,
		},
	}
	if err := w.Append(res); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	res.Report = health.VerdictReport{Tier: health.VerdictWorst, CriticalReason: "consensus layer failed"}
	if err := w.Append(res); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "node=mainnet-1 score=89 tier=good l1=excellent") {
		t.Errorf("line 1 = %q", lines[0])
	}
	if !strings.Contains(lines[1], `critical="consensus layer failed"`) {
		t.Errorf("line 2 = %q", lines[1])
	}
}
