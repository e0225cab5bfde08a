package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordThenListRoundTripsSummary(t *testing.T) {
	s := openTestStore(t)

	startedAt := time.Now().Add(-time.Minute).Truncate(time.Second)
	completedAt := time.Now().Truncate(time.Second)
	summary := map[string]map[string]interface{}{
		"latency": {"interval": map[string]interface{}{"length": float64(3)}},
	}

	id, err := s.Record(startedAt, completedAt, 2, 2, 0, summary)
	if err != nil {
		t.Fatal(err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero run id")
	}

	runs, err := s.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Fatalf("List() returned %d runs, want 1", len(runs))
	}

	got := runs[0]
	if got.ID != id {
		t.Fatalf("ID = %d, want %d", got.ID, id)
	}
	if got.SlaveCount != 2 || got.DoneCount != 2 || got.ErrorCount != 0 {
		t.Fatalf("counts = %+v, want slaveCount=2 doneCount=2 errorCount=0", got)
	}
	if got.SummaryJSON == "" {
		t.Fatal("expected a non-empty summary_json")
	}
}

func TestGetRetrievesOneRun(t *testing.T) {
	s := openTestStore(t)

	now := time.Now().Truncate(time.Second)
	id, err := s.Record(now, now, 1, 1, 0, map[string]map[string]interface{}{})
	if err != nil {
		t.Fatal(err)
	}

	rec, err := s.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != id {
		t.Fatalf("ID = %d, want %d", rec.ID, id)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	s := openTestStore(t)

	older := time.Now().Add(-time.Hour).Truncate(time.Second)
	newer := time.Now().Truncate(time.Second)

	if _, err := s.Record(older, older, 1, 1, 0, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(newer, newer, 1, 1, 0, nil); err != nil {
		t.Fatal(err)
	}

	runs, err := s.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("List() returned %d runs, want 2", len(runs))
	}
	if !runs[0].StartedAt.Equal(newer) {
		t.Fatalf("newest run not first: got StartedAt=%v, want %v", runs[0].StartedAt, newer)
	}
}

func TestDeleteRemovesRun(t *testing.T) {
	s := openTestStore(t)

	now := time.Now().Truncate(time.Second)
	id, err := s.Record(now, now, 1, 1, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(id); err == nil {
		t.Fatal("expected Get() to fail for a deleted run")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopening an existing history database failed: %v", err)
	}
	defer s2.Close()
}
