package stats

import "testing"

func TestRegistryCreatesOnFirstSight(t *testing.T) {
	reg := NewRegistry()
	h := NewHistogram(10)
	h.Put(5)

	if err := reg.Merge("latency", h.ToSnapshot()); err != nil {
		t.Fatal(err)
	}
	r, ok := reg.Get("latency")
	if !ok {
		t.Fatal("expected registry to create a Reportable on first sight")
	}
	if r.Length() != 1 {
		t.Fatalf("Length() = %d, want 1", r.Length())
	}
}

func TestRegistryUnknownNameAbsent(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Get("never-reported"); ok {
		t.Fatal("expected absent name to not exist in registry")
	}
}

func TestRegistryNextResetsIntervalNotCumulative(t *testing.T) {
	reg := NewRegistry()
	h := NewHistogram(10)
	h.Put(1)
	if err := reg.Merge("x", h.ToSnapshot()); err != nil {
		t.Fatal(err)
	}

	snaps := reg.Next()
	if _, ok := snaps["x"]; !ok {
		t.Fatal("expected Next() to return a snapshot for x")
	}

	r, _ := reg.Get("x")
	if r.Interval.Len() != 0 {
		t.Fatalf("interval should be reset after Next(), got len=%d", r.Interval.Len())
	}
	if r.Cumulative.Len() != 1 {
		t.Fatalf("cumulative should survive Next(), got len=%d", r.Cumulative.Len())
	}
}

func TestRegistryClearRemovesAllNames(t *testing.T) {
	reg := NewRegistry()
	h := NewHistogram(10)
	h.Put(1)
	_ = reg.Merge("x", h.ToSnapshot())
	reg.Clear()
	if len(reg.Names()) != 0 {
		t.Fatalf("expected empty registry after Clear(), got %v", reg.Names())
	}
}
