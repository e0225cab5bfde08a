package scheduler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/loadcoord/loadcoord/internal/testspec"
	"github.com/loadcoord/loadcoord/internal/wire"
)

func TestHTTPGeneratorRunRecordsDurationAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gen := NewHTTPGenerator().(*HTTPGenerator)
	spec := &testspec.TestSpec{
		Generator:   "http",
		Concurrency: 2,
		Duration:    50 * time.Millisecond,
		Request:     &wire.HTTPRequest{Method: "GET", URL: srv.URL},
	}

	if err := gen.Run(spec); err != nil {
		t.Fatal(err)
	}

	durations, ok := gen.Registry().Get("duration")
	if !ok {
		t.Fatal("expected a duration sketch to have been created")
	}
	if durations.Length() == 0 {
		t.Fatal("expected at least one recorded duration sample")
	}

	statuses, ok := gen.Registry().Get("status")
	if !ok {
		t.Fatal("expected a status sketch to have been created")
	}
	if statuses.Length() == 0 {
		t.Fatal("expected at least one recorded status sample")
	}
}

func TestHTTPGeneratorStopEndsRunEarly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	gen := NewHTTPGenerator().(*HTTPGenerator)
	spec := &testspec.TestSpec{
		Generator:   "http",
		Concurrency: 1,
		Duration:    10 * time.Second,
		Request:     &wire.HTTPRequest{Method: "GET", URL: srv.URL},
	}

	done := make(chan struct{})
	go func() {
		_ = gen.Run(spec)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	gen.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return promptly after Stop")
	}
}
