// Package slave implements the agent side of the master/slave protocol:
// an HTTP server exposing wire.RouteRemote and its siblings, and a
// progress-push loop that periodically POSTs a StatReport to the master.
// Its HTTP surface is grounded on the teacher's mock.Server
// (stdlib net/http.ServeMux, mutex-guarded state, graceful Shutdown).
package slave

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/loadcoord/loadcoord/internal/logging"
	"github.com/loadcoord/loadcoord/internal/stats"
	"github.com/loadcoord/loadcoord/internal/testspec"
	"github.com/loadcoord/loadcoord/internal/wire"
)

// Agent runs one slave's HTTP surface and progress-push loop. Id and
// MasterAddr are fixed at construction; Generator and reportInterval
// change each time /remote starts a new run.
type Agent struct {
	ID         string
	MasterAddr string
	Catalog    *testspec.Catalog
	Log        *logging.Logger

	mu             sync.Mutex
	generator      testspec.Generator
	reportInterval time.Duration
	runDone        chan struct{}

	httpServer *http.Server
	client     *http.Client
	clientOnce sync.Once

	stopPush chan struct{}
}

// NewAgent returns an Agent ready to serve once Start is called.
func NewAgent(id, masterAddr string, catalog *testspec.Catalog, log *logging.Logger) *Agent {
	return &Agent{
		ID:         id,
		MasterAddr: masterAddr,
		Catalog:    catalog,
		Log:        log,
	}
}

// Start listens on addr and serves the wire protocol until ctx is
// cancelled, mirroring the teacher's Start/Stop split on mock.Server.
func (a *Agent) Start(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc(wire.RouteRemote, a.handleRemote)
	mux.HandleFunc(wire.RouteRemoteState, a.handleState)
	mux.HandleFunc(wire.RouteRemoteStop, a.handleStop)

	a.httpServer = &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.httpServer.Shutdown(shutdownCtx)
	}
}

// handleRemote starts a new run from a posted TestSpec. Only POST is
// accepted; anything else is a 405, matching spec.md §6's wire contract.
func (a *Agent) handleRemote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeStatus(w, http.StatusMethodNotAllowed, "")
		return
	}

	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	var spec testspec.TestSpec
	if err := json.Unmarshal(body, &spec); err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	gen, err := a.Catalog.Resolve(&spec)
	if err != nil {
		writeStatus(w, http.StatusBadRequest, err.Error())
		return
	}

	a.mu.Lock()
	a.generator = gen
	a.reportInterval = spec.ReportInterval
	a.runDone = make(chan struct{})
	a.mu.Unlock()

	go a.runAndPush(&spec, gen)

	writeStatus(w, http.StatusOK, "")
}

func (a *Agent) runAndPush(spec *testspec.TestSpec, gen testspec.Generator) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := gen.Run(spec); err != nil {
			a.Log.Error("msg", "generator run failed", "err", err)
		}
	}()

	interval := a.reportInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.pushReport(gen)
		case <-done:
			a.pushReport(gen)
			a.mu.Lock()
			if a.runDone != nil {
				close(a.runDone)
				a.runDone = nil
			}
			a.mu.Unlock()
			return
		}
	}
}

func (a *Agent) pushReport(gen testspec.Generator) {
	withRegistry, ok := gen.(registryHolder)
	if !ok {
		return
	}
	snaps := withRegistry.Registry().Next()
	if len(snaps) == 0 {
		return
	}

	report := wire.StatReport{SlaveID: a.ID}
	for name, snap := range snaps {
		report.Stats = append(report.Stats, wire.StatSnapshot{
			Name:            name,
			AddToHTTPReport: true,
			Interval:        snap,
		})
	}

	body, err := json.Marshal(report)
	if err != nil {
		a.Log.Error("msg", "failed to marshal progress report", "err", err)
		return
	}

	client := a.httpClient()
	resp, err := client.Post(a.MasterAddr+wire.RouteRemoteProgress, "application/json", bytes.NewReader(body))
	if err != nil {
		a.Log.Warn("msg", "failed to push progress report", "err", err)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// registryHolder lets pushReport pull an interval-reset snapshot set out
// of a generator without the testspec package depending on stats.
type registryHolder interface {
	Registry() *stats.Registry
}

func (a *Agent) httpClient() *http.Client {
	a.clientOnce.Do(func() {
		a.client = &http.Client{Timeout: 5 * time.Second}
	})
	return a.client
}

// handleState reports whether a run is in progress: 200 while running,
// 410 Gone if it's stopped or was never started. The two are deliberately
// distinguishable from a 404, which this route never returns (spec.md §6).
func (a *Agent) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeStatus(w, http.StatusMethodNotAllowed, "")
		return
	}

	a.mu.Lock()
	gen := a.generator
	a.mu.Unlock()

	if gen == nil {
		writeStatus(w, http.StatusGone, "")
		return
	}
	if gen.Running() {
		writeStatus(w, http.StatusOK, "running")
		return
	}
	writeStatus(w, http.StatusGone, "done")
}

// handleStop cancels the active run, if any.
func (a *Agent) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeStatus(w, http.StatusMethodNotAllowed, "")
		return
	}

	a.mu.Lock()
	gen := a.generator
	a.mu.Unlock()

	if gen != nil {
		gen.Stop()
	}
	writeStatus(w, http.StatusOK, "")
}

// writeStatus always sets Content-Length explicitly from len(body) before
// writing the status, matching the teacher's always-write-status-and-body convention.
func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if body != "" {
		_, _ = w.Write([]byte(body))
	}
}
