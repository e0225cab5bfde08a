// Package report renders the aggregated stat registry each time the
// master's progress window fires or a run completes. The spec fixes only
// the Renderer interface; callers are free to plug in other renderers
// (spec.md §9 design note).
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/loadcoord/loadcoord/internal/stats"
)

// Renderer consumes one progress-window firing's interval snapshots, or a
// run's final cumulative summary.
type Renderer interface {
	RenderInterval(snapshots map[string]stats.Snapshot)
	RenderSummary(summary map[string]map[string]interface{})
}

// ConsoleRenderer writes a human-readable line per stat to w, in
// alphabetical order for deterministic output.
type ConsoleRenderer struct {
	w io.Writer
}

// NewConsoleRenderer returns a Renderer writing to w.
func NewConsoleRenderer(w io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{w: w}
}

func (c *ConsoleRenderer) RenderInterval(snapshots map[string]stats.Snapshot) {
	for _, name := range sortedKeys(snapshots) {
		snap := snapshots[name]
		fmt.Fprintf(c.w, "%-16s %s\n", name, describeSnapshot(snap))
	}
}

func (c *ConsoleRenderer) RenderSummary(summary map[string]map[string]interface{}) {
	fmt.Fprintln(c.w, "--- run summary ---")
	for _, name := range sortedSummaryKeys(summary) {
		fmt.Fprintf(c.w, "%-16s %v\n", name, summary[name])
	}
}

func describeSnapshot(snap stats.Snapshot) string {
	switch snap.Type {
	case stats.KindHistogram:
		if snap.Histogram == nil {
			return "(empty)"
		}
		return fmt.Sprintf("n=%d sum=%d min=%d max=%d", snap.Histogram.Length, snap.Histogram.Sum, snap.Histogram.Min, snap.Histogram.Max)
	case stats.KindAccumulator:
		if snap.Accumulator == nil {
			return "(empty)"
		}
		return fmt.Sprintf("total=%.2f n=%d", snap.Accumulator.Total, snap.Accumulator.Length)
	case stats.KindCounter:
		if snap.Counter == nil {
			return "(empty)"
		}
		return fmt.Sprintf("items=%v", snap.Counter.Items)
	case stats.KindUniques:
		if snap.Uniques == nil {
			return "(empty)"
		}
		return fmt.Sprintf("uniqs=%d items=%v", snap.Uniques.Uniqs, snap.Uniques.Items)
	case stats.KindPeak:
		if snap.Peak == nil {
			return "(empty)"
		}
		return fmt.Sprintf("max=%.2f", snap.Peak.Max)
	case stats.KindRate:
		if snap.Rate == nil {
			return "(empty)"
		}
		return fmt.Sprintf("count=%d", snap.Rate.Count)
	default:
		return "(unrecognized)"
	}
}

func sortedKeys(m map[string]stats.Snapshot) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSummaryKeys(m map[string]map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
