package stats

import "testing"

func TestResultsCounterPutTracksPerKeyAndTotal(t *testing.T) {
	c := NewResultsCounter()
	c.Put("2xx", 1000)
	c.Put("2xx", 1100)
	c.Put("5xx", 1200)

	s := c.Summary()
	items := s["items"].(map[string]int64)
	if items["2xx"] != 2 || items["5xx"] != 1 {
		t.Fatalf("items = %v, want 2xx:2 5xx:1", items)
	}
	if s["length"] != int64(3) {
		t.Fatalf("length = %v, want 3", s["length"])
	}
}

func TestResultsCounterRPSZeroBeforeAnyPut(t *testing.T) {
	c := NewResultsCounter()
	if got := c.RPS(1000); got != 0 {
		t.Fatalf("RPS() before any Put = %v, want 0", got)
	}
}

func TestResultsCounterRPSAfterElapsedTime(t *testing.T) {
	c := NewResultsCounter()
	c.Put("2xx", 0)
	c.Put("2xx", 0)
	c.Put("2xx", 0)
	c.Put("2xx", 0)

	if got := c.RPS(2000); got != 2 {
		t.Fatalf("RPS(2000) = %v, want 2 (4 requests over 2s)", got)
	}
}

func TestResultsCounterSummaryIncludesRPS(t *testing.T) {
	c := NewResultsCounter()
	c.Put("2xx", 1000)

	if _, ok := c.Summary()["rps"]; !ok {
		t.Fatal("expected Summary() to include an rps field")
	}
}

func TestResultsCounterMergeSumsPerKeyCounts(t *testing.T) {
	a := NewResultsCounter()
	a.Put("2xx", 1000)
	a.Put("2xx", 1100)

	b := NewResultsCounter()
	b.Put("2xx", 1200)
	b.Put("5xx", 1300)

	merged := NewResultsCounter()
	if err := merged.Merge(a.ToSnapshot()); err != nil {
		t.Fatal(err)
	}
	if err := merged.Merge(b.ToSnapshot()); err != nil {
		t.Fatal(err)
	}

	if merged.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", merged.Len())
	}
	items := merged.Summary()["items"].(map[string]int64)
	if items["2xx"] != 3 || items["5xx"] != 1 {
		t.Fatalf("items = %v, want 2xx:3 5xx:1", items)
	}
}

func TestResultsCounterMergeKeepsFirstSeenStartTime(t *testing.T) {
	a := NewResultsCounter()
	a.Put("2xx", 5000)

	b := NewResultsCounter()
	b.Put("2xx", 1000)

	merged := NewResultsCounter()
	if err := merged.Merge(a.ToSnapshot()); err != nil {
		t.Fatal(err)
	}
	if err := merged.Merge(b.ToSnapshot()); err != nil {
		t.Fatal(err)
	}

	if merged.startUnixMs != 5000 {
		t.Fatalf("startUnixMs = %d, want 5000 (the first non-zero snapshot merged sets it)", merged.startUnixMs)
	}
}

func TestResultsCounterMergeRejectsIncompatibleSnapshot(t *testing.T) {
	c := NewResultsCounter()
	h := NewHistogram(10)
	h.Put(1)

	if err := c.Merge(h.ToSnapshot()); err == nil {
		t.Fatal("expected error merging a histogram snapshot into a ResultsCounter")
	}
}

func TestResultsCounterClear(t *testing.T) {
	c := NewResultsCounter()
	c.Put("2xx", 1000)
	c.Clear()

	if c.Len() != 0 {
		t.Fatalf("Len() after Clear() = %d, want 0", c.Len())
	}
	if c.RPS(2000) != 0 {
		t.Fatal("expected RPS() to be 0 after Clear()")
	}
}
