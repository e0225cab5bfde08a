// Package wire defines the JSON bodies and HTTP route paths exchanged
// between the master and a slave agent, generalized from the teacher's
// types.HttpRequest/RequestResult and mock.Server route shapes.
package wire

import "github.com/loadcoord/loadcoord/internal/stats"

// Route paths exposed by a slave agent and polled or posted to by the
// master.
const (
	RouteRemote         = "/remote"
	RouteRemoteState    = "/remote/state"
	RouteRemoteProgress = "/remote/progress"
	RouteRemoteStop     = "/remote/stop"
)

// TLSConfig configures client-side TLS for a generated HTTP request. Its
// fields mirror the only usage pattern observed across the pack's HTTP
// client builders (cert/key/CA paths plus a skip-verify escape hatch).
type TLSConfig struct {
	CertFile           string `json:"certFile,omitempty" yaml:"certFile,omitempty"`
	KeyFile            string `json:"keyFile,omitempty" yaml:"keyFile,omitempty"`
	CAFile             string `json:"caFile,omitempty" yaml:"caFile,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
}

// HTTPRequest is the request template a generator replays against the
// target, one instance per TestSpec.
type HTTPRequest struct {
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    string            `json:"body,omitempty" yaml:"body,omitempty"`
	TLS     *TLSConfig        `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// RequestResult is one executed request's outcome. HTTPGenerator does not
// build it: it records durations into a Histogram and status classes into a
// ResultsCounter directly.
type RequestResult struct {
	Status       int    `json:"status"`
	Duration     int64  `json:"duration"` // milliseconds
	RequestSize  int    `json:"requestSize"`
	ResponseSize int    `json:"responseSize"`
	Error        string `json:"error,omitempty"`
}

// StatSnapshot names one interval sketch within a progress report.
// AddToHTTPReport marks sketches meant for a human-facing summary rather
// than raw telemetry.
type StatSnapshot struct {
	Name            string         `json:"name"`
	AddToHTTPReport bool           `json:"addToHttpReport"`
	Interval        stats.Snapshot `json:"interval"`
}

// StatReport is POSTed by a slave agent to the master's
// RouteRemoteProgress on every push, inside the fixed progress window.
type StatReport struct {
	SlaveID string         `json:"slaveId"`
	Stats   []StatSnapshot `json:"stats"`
}
