package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRunsCompletedTotalIsMonotonicNonDecreasing(t *testing.T) {
	before := testutil.ToFloat64(RunsCompletedTotal)

	var last float64 = before
	for i := 0; i < 5; i++ {
		RunsCompletedTotal.Inc()
		got := testutil.ToFloat64(RunsCompletedTotal)
		if got < last {
			t.Fatalf("round %d: RunsCompletedTotal went from %v to %v, want non-decreasing", i, last, got)
		}
		last = got
	}

	if last != before+5 {
		t.Fatalf("RunsCompletedTotal = %v, want %v", last, before+5)
	}
}

func TestProgressReportsTotalIsMonotonicNonDecreasingPerSlave(t *testing.T) {
	before := testutil.ToFloat64(ProgressReportsTotal.WithLabelValues("slave-telemetry-test"))

	var last float64 = before
	for round := 0; round < 3; round++ {
		ProgressReportsTotal.WithLabelValues("slave-telemetry-test").Inc()
		got := testutil.ToFloat64(ProgressReportsTotal.WithLabelValues("slave-telemetry-test"))
		if got < last {
			t.Fatalf("round %d: ProgressReportsTotal went from %v to %v, want non-decreasing", round, last, got)
		}
		last = got
	}
}

func TestMergeErrorsTotalIsMonotonicNonDecreasingPerStat(t *testing.T) {
	before := testutil.ToFloat64(MergeErrorsTotal.WithLabelValues("telemetry-test-stat"))

	var last float64 = before
	for round := 0; round < 3; round++ {
		MergeErrorsTotal.WithLabelValues("telemetry-test-stat").Inc()
		got := testutil.ToFloat64(MergeErrorsTotal.WithLabelValues("telemetry-test-stat"))
		if got < last {
			t.Fatalf("round %d: MergeErrorsTotal went from %v to %v, want non-decreasing", round, last, got)
		}
		last = got
	}
}

func TestSlavesByStateGaugeReflectsLatestSet(t *testing.T) {
	SlavesByState.WithLabelValues("running").Set(3)
	if got := testutil.ToFloat64(SlavesByState.WithLabelValues("running")); got != 3 {
		t.Fatalf("SlavesByState[running] = %v, want 3", got)
	}

	SlavesByState.WithLabelValues("running").Set(1)
	if got := testutil.ToFloat64(SlavesByState.WithLabelValues("running")); got != 1 {
		t.Fatalf("SlavesByState[running] = %v, want 1 after a second Set", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	if Handler() == nil {
		t.Fatal("expected a non-nil metrics handler")
	}
}
