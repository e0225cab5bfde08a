// Package scheduler drives a slave agent's concurrent request generators.
// HTTPGenerator is the builtin "http" generator: a worker pool hammering
// one request template, feeding results into a Registry of sketches the
// agent periodically snapshots into a StatReport. It is a direct
// generalization of the teacher's stresstest.Executor: same worker-pool,
// request channel, context-cancellation and graceful-drain shape,
// retargeted at the closed TestSpec protocol instead of an ad hoc
// request-file run.
package scheduler

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/loadcoord/loadcoord/internal/stats"
	"github.com/loadcoord/loadcoord/internal/testspec"
)

// shutdownGracePeriod mirrors the teacher's drain delay before declaring
// a stopped run fully quiesced.
const shutdownGracePeriod = 100 * time.Millisecond

// requestTask is one scheduled request.
type requestTask struct {
	startOffset time.Duration
}

// HTTPGenerator runs concurrent HTTP requests against one request
// template for a fixed duration (or until stopped), recording every
// outcome into its own Registry of sketches.
type HTTPGenerator struct {
	reg        *stats.Registry
	numBuckets int

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	workersOK  sync.WaitGroup
	requestCh  chan *requestTask
	closeOnce  sync.Once
	httpClient *http.Client
	running    int32
	activeReq  int32
}

// NewHTTPGenerator returns an unstarted HTTPGenerator using the package
// default bucket count. It implements testspec.Generator and is registered
// in a slave's Catalog under the name "http".
func NewHTTPGenerator() testspec.Generator {
	return NewHTTPGeneratorWithBuckets(stats.DefaultNumBuckets)
}

// NewHTTPGeneratorWithBuckets returns an unstarted HTTPGenerator whose
// per-request duration histograms use numBuckets buckets, threading the
// configured histogram shape (spec.md §6) into every run it drives.
func NewHTTPGeneratorWithBuckets(numBuckets int) testspec.Generator {
	return &HTTPGenerator{reg: stats.NewRegistry(), numBuckets: numBuckets}
}

// Run starts the generator against spec and blocks until the run
// completes (duration elapsed or Stop called).
func (g *HTTPGenerator) Run(spec *testspec.TestSpec) error {
	var tlsCfg = spec.Request.TLS
	client, err := buildHTTPClient(spec.Concurrency, tlsCfg)
	if err != nil {
		return err
	}
	g.httpClient = client

	ctx, cancel := context.WithCancel(context.Background())
	g.ctx = ctx
	g.cancel = cancel
	atomic.StoreInt32(&g.running, 1)

	concurrency := spec.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	g.requestCh = make(chan *requestTask, concurrency*2)

	g.workersOK.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		g.wg.Add(1)
		go g.worker(spec)
	}

	go g.schedule(spec, concurrency)

	if spec.Duration > 0 {
		go func() {
			select {
			case <-time.After(spec.Duration):
				g.cancel()
			case <-ctx.Done():
			}
		}()
	}

	g.wg.Wait()
	g.closeRequestCh()
	time.Sleep(shutdownGracePeriod)
	atomic.StoreInt32(&g.running, 0)
	return nil
}

// schedule feeds requestTasks to the workers until the context is
// cancelled. A rate target paces tasks evenly; otherwise tasks are queued
// as fast as workers can drain them.
func (g *HTTPGenerator) schedule(spec *testspec.TestSpec, concurrency int) {
	done := make(chan struct{})
	go func() {
		g.workersOK.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-g.ctx.Done():
		return
	}

	var pacing time.Duration
	if spec.RateTarget > 0 {
		pacing = time.Duration(float64(time.Second) / spec.RateTarget)
	}

	for {
		select {
		case <-g.ctx.Done():
			return
		case g.requestCh <- &requestTask{}:
			if pacing > 0 {
				select {
				case <-time.After(pacing):
				case <-g.ctx.Done():
					return
				}
			}
		}
	}
}

func (g *HTTPGenerator) worker(spec *testspec.TestSpec) {
	defer g.wg.Done()
	g.workersOK.Done()

	for {
		select {
		case <-g.ctx.Done():
			return
		case task, ok := <-g.requestCh:
			if !ok {
				return
			}
			if task.startOffset > 0 {
				select {
				case <-time.After(task.startOffset):
				case <-g.ctx.Done():
					return
				}
			}
			g.execute(spec)
		}
	}
}

func (g *HTTPGenerator) execute(spec *testspec.TestSpec) {
	atomic.AddInt32(&g.activeReq, 1)
	defer atomic.AddInt32(&g.activeReq, -1)

	req := spec.Request
	start := time.Now()

	var bodyReader io.Reader
	if req.Body != "" {
		bodyReader = bytes.NewReader([]byte(req.Body))
	}
	httpReq, err := http.NewRequestWithContext(g.ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		g.recordResult(0, time.Since(start), err)
		return
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.recordResult(0, time.Since(start), err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	g.recordResult(resp.StatusCode, time.Since(start), nil)
}

func (g *HTTPGenerator) recordResult(status int, elapsed time.Duration, err error) {
	_ = g.reg.Merge("duration", g.durationSnapshot(elapsed))

	code := "error"
	if err == nil {
		code = statusClass(status)
	}
	_ = g.reg.Merge("status", countSnapshot(code))
}

func (g *HTTPGenerator) durationSnapshot(d time.Duration) stats.Snapshot {
	h := stats.NewHistogram(g.numBuckets)
	h.Put(d.Milliseconds())
	return h.ToSnapshot()
}

func countSnapshot(key string) stats.Snapshot {
	c := stats.NewResultsCounter()
	c.Put(key, time.Now().UnixMilli())
	return c.ToSnapshot()
}

func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

func (g *HTTPGenerator) closeRequestCh() {
	g.closeOnce.Do(func() { close(g.requestCh) })
}

// Stop cancels the run; Run returns once workers drain.
func (g *HTTPGenerator) Stop() {
	if g.cancel != nil {
		g.cancel()
	}
}

// Running reports whether a run is currently in progress.
func (g *HTTPGenerator) Running() bool {
	return atomic.LoadInt32(&g.running) == 1
}

// Registry exposes the sketch registry this run is writing into, so an
// agent can pull and reset interval snapshots for its progress pushes.
func (g *HTTPGenerator) Registry() *stats.Registry {
	return g.reg
}
