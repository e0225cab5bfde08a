package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/loadcoord/loadcoord/internal/stats"
)

func TestConsoleRendererIntervalIncludesEveryStat(t *testing.T) {
	var buf bytes.Buffer
	r := NewConsoleRenderer(&buf)

	h := stats.NewHistogram(10)
	h.Put(3)

	r.RenderInterval(map[string]stats.Snapshot{"latency": h.ToSnapshot()})

	out := buf.String()
	if !strings.Contains(out, "latency") {
		t.Fatalf("expected output to mention the stat name, got: %q", out)
	}
	if !strings.Contains(out, "n=1") {
		t.Fatalf("expected output to include the sample count, got: %q", out)
	}
}

func TestConsoleRendererSummaryIsDeterministic(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	summary := map[string]map[string]interface{}{
		"b": {"total": 2},
		"a": {"total": 1},
	}

	NewConsoleRenderer(&buf1).RenderSummary(summary)
	NewConsoleRenderer(&buf2).RenderSummary(summary)

	if buf1.String() != buf2.String() {
		t.Fatalf("expected deterministic summary output, got %q vs %q", buf1.String(), buf2.String())
	}
}
