// Package master implements the master side of the master/slave
// protocol: a WorkerPool tracking each slave's lifecycle state, a
// liveness-ping loop, and a progress-aggregation window that coalesces
// bursts of slave reports into one callback per round. The single
// sync.Mutex guarding all pool state is grounded on the teacher's
// analytics.statsCache convention of one mutex per shared map.
package master

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/loadcoord/loadcoord/internal/logging"
	"github.com/loadcoord/loadcoord/internal/stats"
	"github.com/loadcoord/loadcoord/internal/telemetry"
	"github.com/loadcoord/loadcoord/internal/testspec"
	"github.com/loadcoord/loadcoord/internal/wire"
	"golang.org/x/sync/errgroup"
)

// SlaveState is a slave's lifecycle stage (spec.md §3).
type SlaveState string

const (
	StateNotStarted SlaveState = "notstarted"
	StateRunning    SlaveState = "running"
	StatePing       SlaveState = "ping"
	StateDone       SlaveState = "done"
	StateError      SlaveState = "error"
)

// terminal states end a slave's participation in the current run.
func (s SlaveState) terminal() bool { return s == StateDone || s == StateError }

// SlaveDescriptor tracks one slave's address and current lifecycle state.
type SlaveDescriptor struct {
	ID    string
	Addr  string
	State SlaveState
}

// CompletionFunc is invoked exactly once, when every slave has reached a
// terminal state. doneCount and errorCount are captured before the pool
// clears its slave map, so callers don't need to race Slaves().
type CompletionFunc func(summary map[string]map[string]interface{}, doneCount, errorCount int)

// ProgressFunc is invoked once per progress-window firing, carrying the
// interval snapshot rotated out of every stat reported so far. A report
// renderer is the typical consumer; the window's only fixed contract is
// this callback's signature (spec.md §9 design note).
type ProgressFunc func(interval map[string]stats.Snapshot)

// Pool coordinates a set of slaves through one run: sending the TestSpec,
// pinging for liveness, receiving progress reports, and firing a
// completion callback once every slave is terminal.
type Pool struct {
	mu sync.Mutex

	slaves   map[string]*SlaveDescriptor
	registry *stats.Registry

	pingPeriod     time.Duration
	progressWindow time.Duration

	pingTimer     *time.Timer
	progressTimer *time.Timer

	onComplete CompletionFunc
	onProgress ProgressFunc
	stayAlive  bool
	finished   bool

	client *http.Client
	log    *logging.Logger

	stopCh chan struct{}
}

// NewPool returns an idle Pool. Call Start to begin a run. The HTTP client
// timeout is tied to pingPeriod: no per-request timeout beyond the ping
// period (spec.md §5) — a probe that outlives one period fails the request
// itself, rather than the round just running long.
func NewPool(pingPeriod, progressWindow time.Duration, log *logging.Logger) *Pool {
	return &Pool{
		slaves:         make(map[string]*SlaveDescriptor),
		registry:       stats.NewRegistry(),
		pingPeriod:     pingPeriod,
		progressWindow: progressWindow,
		client:         &http.Client{Timeout: pingPeriod},
		log:            log,
	}
}

// Start registers slaves, posts spec to each, and arms the ping loop.
// stayAlive, if true, keeps the pool's registry around after completion
// instead of clearing it (used by long-lived interactive sessions).
func (p *Pool) Start(ctx context.Context, slaveAddrs []string, spec *testspec.TestSpec, onComplete CompletionFunc, stayAlive bool) error {
	p.mu.Lock()
	p.onComplete = onComplete
	p.stayAlive = stayAlive
	p.finished = false
	p.slaves = make(map[string]*SlaveDescriptor, len(slaveAddrs))
	for _, addr := range slaveAddrs {
		p.slaves[addr] = &SlaveDescriptor{ID: addr, Addr: addr, State: StateNotStarted}
	}
	p.stopCh = make(chan struct{})
	p.mu.Unlock()

	if err := p.broadcastSpec(ctx, spec); err != nil {
		return err
	}

	p.mu.Lock()
	for _, d := range p.slaves {
		d.State = StateRunning
	}
	p.mu.Unlock()

	p.armPingTimer()
	return nil
}

// broadcastSpec POSTs spec to every registered slave concurrently.
func (p *Pool) broadcastSpec(ctx context.Context, spec *testspec.TestSpec) error {
	body, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	p.mu.Lock()
	addrs := make([]string, 0, len(p.slaves))
	for addr := range p.slaves {
		addrs = append(addrs, addr)
	}
	p.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, addr := range addrs {
		addr := addr
		g.Go(func() error {
			req, err := http.NewRequestWithContext(gctx, http.MethodPost, addr+wire.RouteRemote, bytes.NewReader(body))
			if err != nil {
				return err
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := p.client.Do(req)
			if err != nil {
				return fmt.Errorf("slave %s: %w", addr, err)
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil
		})
	}
	return g.Wait()
}

// armPingTimer schedules the next liveness probe round.
func (p *Pool) armPingTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pingTimer != nil {
		p.pingTimer.Stop()
	}
	p.pingTimer = time.AfterFunc(p.pingPeriod, p.sendPings)
}

// sendPings runs the three-step liveness algorithm from spec.md §6:
// 1. any slave lingering in "ping" from the previous round missed its
//    probe and is marked "error";
// 2. every "running" slave is flipped to "ping" and polled at
//    RouteRemoteState;
// 3. checkFinished is evaluated once the round settles.
func (p *Pool) sendPings() {
	p.mu.Lock()
	lingering := make([]*SlaveDescriptor, 0)
	toProbe := make([]*SlaveDescriptor, 0)
	for _, d := range p.slaves {
		switch d.State {
		case StatePing:
			lingering = append(lingering, d)
		case StateRunning:
			toProbe = append(toProbe, d)
		}
	}
	for _, d := range lingering {
		d.State = StateError
		p.log.Warn("msg", "slave missed liveness probe", "slave", d.ID)
	}
	for _, d := range toProbe {
		d.State = StatePing
	}
	p.mu.Unlock()

	var wg sync.WaitGroup
	start := time.Now()
	for _, d := range toProbe {
		wg.Add(1)
		go func(d *SlaveDescriptor) {
			defer wg.Done()
			p.probeState(d)
		}(d)
	}
	wg.Wait()
	telemetry.PingDurationSeconds.Observe(time.Since(start).Seconds())
	p.reportSlaveGauges()

	p.checkFinished()

	p.mu.Lock()
	done := p.finished
	p.mu.Unlock()
	if !done {
		p.armPingTimer()
	}
}

// probeState GETs RouteRemoteState on one slave and interprets the
// result: 200 means still running, 410 Gone means it finished cleanly.
// Any other outcome, including a transport error or timeout, leaves the
// slave's state as "ping" (sendPings already set it there before probing):
// step 1 of the *next* round is what promotes a still-"ping" slave to
// "error" (spec.md §4.3). probeState never sets StateError itself.
func (p *Pool) probeState(d *SlaveDescriptor) {
	resp, err := p.client.Get(d.Addr + wire.RouteRemoteState)
	if err != nil {
		p.log.Warn("msg", "liveness probe did not answer within the ping period", "slave", d.ID, "err", err)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	p.mu.Lock()
	switch resp.StatusCode {
	case http.StatusOK:
		d.State = StateRunning
	case http.StatusGone:
		d.State = StateDone
	default:
		p.log.Warn("msg", "liveness probe returned an unexpected status", "slave", d.ID, "status", resp.StatusCode)
	}
	p.mu.Unlock()
}

// checkFinished fires onComplete exactly once, when every slave has
// reached a terminal state. Unless stayAlive is set, the registry and
// slave map are cleared before the callback runs, intentionally: the
// callback receives a snapshot of the final summary, not a live view of
// pool state.
func (p *Pool) checkFinished() {
	p.mu.Lock()
	if p.finished || len(p.slaves) == 0 {
		p.mu.Unlock()
		return
	}
	for _, d := range p.slaves {
		if !d.State.terminal() {
			p.mu.Unlock()
			return
		}
	}

	p.finished = true
	summary := p.registry.Summaries()
	cb := p.onComplete
	var doneCount, errorCount int
	for _, d := range p.slaves {
		switch d.State {
		case StateDone:
			doneCount++
		case StateError:
			errorCount++
		}
	}
	if p.pingTimer != nil {
		p.pingTimer.Stop()
	}
	if p.progressTimer != nil {
		p.progressTimer.Stop()
	}
	if !p.stayAlive {
		p.registry.Clear()
		p.slaves = make(map[string]*SlaveDescriptor)
	}
	p.mu.Unlock()

	if cb != nil {
		cb(summary, doneCount, errorCount)
	}
	telemetry.RunsCompletedTotal.Inc()
}

// reportSlaveGauges refreshes the per-state slave gauge after a ping
// round settles.
func (p *Pool) reportSlaveGauges() {
	p.mu.Lock()
	counts := map[SlaveState]int{}
	for _, d := range p.slaves {
		counts[d.State]++
	}
	p.mu.Unlock()

	for _, state := range []SlaveState{StateNotStarted, StateRunning, StatePing, StateDone, StateError} {
		telemetry.SlavesByState.WithLabelValues(string(state)).Set(float64(counts[state]))
	}
}

// ReceiveProgress merges a slave's report into the registry and arms the
// progress window. Reports from a slaveId the pool does not recognize are
// silently dropped (spec.md §4.2 edge case). A report marks its slave
// running unconditionally, including one arriving late for a slave already
// flagged done or error — harmless by design (spec.md §5).
func (p *Pool) ReceiveProgress(report *wire.StatReport) {
	p.mu.Lock()
	d, ok := p.slaves[report.SlaveID]
	if ok {
		d.State = StateRunning
	}
	p.mu.Unlock()
	if !ok {
		return
	}

	telemetry.ProgressReportsTotal.WithLabelValues(report.SlaveID).Inc()

	for _, snap := range report.Stats {
		if err := p.registry.Merge(snap.Name, snap.Interval); err != nil {
			telemetry.MergeErrorsTotal.WithLabelValues(snap.Name).Inc()
			p.log.Error("msg", "failed to merge progress snapshot", "slave", report.SlaveID, "stat", snap.Name, "err", err)
		}
	}

	p.armProgressWindow()
}

// armProgressWindow starts the fixed coalescing timer exactly once per
// round: further reports arriving before it fires just merge into the
// same pending round (spec.md §4.3).
func (p *Pool) armProgressWindow() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.progressTimer != nil {
		return
	}
	p.progressTimer = time.AfterFunc(p.progressWindow, p.fireProgressWindow)
}

func (p *Pool) fireProgressWindow() {
	p.mu.Lock()
	p.progressTimer = nil
	cb := p.onProgress
	p.mu.Unlock()

	if cb == nil {
		return
	}
	cb(p.registry.Next())
}

// OnProgress sets the callback invoked once per progress-window firing.
func (p *Pool) OnProgress(fn ProgressFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onProgress = fn
}

// Summaries returns the current per-stat interval/cumulative summaries.
func (p *Pool) Summaries() map[string]map[string]interface{} {
	return p.registry.Summaries()
}

// Slaves returns a snapshot of every slave's current state.
func (p *Pool) Slaves() []SlaveDescriptor {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SlaveDescriptor, 0, len(p.slaves))
	for _, d := range p.slaves {
		out = append(out, *d)
	}
	return out
}

// StopAll broadcasts RouteRemoteStop to every registered slave.
func (p *Pool) StopAll(ctx context.Context) error {
	p.mu.Lock()
	addrs := make([]string, 0, len(p.slaves))
	for addr := range p.slaves {
		addrs = append(addrs, addr)
	}
	p.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, addr := range addrs {
		addr := addr
		g.Go(func() error {
			req, err := http.NewRequestWithContext(gctx, http.MethodPost, addr+wire.RouteRemoteStop, nil)
			if err != nil {
				return err
			}
			resp, err := p.client.Do(req)
			if err != nil {
				return fmt.Errorf("slave %s: %w", addr, err)
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil
		})
	}
	return g.Wait()
}
