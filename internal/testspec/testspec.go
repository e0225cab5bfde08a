// Package testspec defines the closed test-specification protocol a
// master sends to a slave's RouteRemote handler, and the catalog a slave
// uses to resolve a spec's generator name into a concrete runner. This
// realizes the redesign in spec.md §9: a slave never executes arbitrary
// remote code, only a named, registered generator driven by declarative
// parameters.
package testspec

import (
	"fmt"
	"time"

	"github.com/loadcoord/loadcoord/internal/wire"
)

// TestSpec is the closed, declarative description of one load-test run.
type TestSpec struct {
	Name           string            `json:"name"`
	Generator      string            `json:"generator"`
	Concurrency    int               `json:"concurrency"`
	Duration       time.Duration     `json:"duration"`
	RateTarget     float64           `json:"rateTarget,omitempty"`
	Request        *wire.HTTPRequest `json:"request"`
	ReportInterval time.Duration     `json:"reportInterval"`
}

// ErrUnknownGenerator is returned by Resolve when a TestSpec names a
// generator the catalog has no constructor for.
type ErrUnknownGenerator struct{ Generator string }

func (e *ErrUnknownGenerator) Error() string {
	return fmt.Sprintf("testspec: unknown generator %q", e.Generator)
}

// Generator is anything a slave agent can drive: start it against a
// resolved TestSpec, stop it early, and ask whether it is still running.
type Generator interface {
	Run(spec *TestSpec) error
	Stop()
	Running() bool
}

// Constructor builds a fresh Generator instance for one run.
type Constructor func() Generator

// Catalog maps a generator name to its constructor. A slave registers
// every generator it supports at startup.
type Catalog struct {
	constructors map[string]Constructor
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{constructors: make(map[string]Constructor)}
}

// Register adds a named generator constructor to the catalog.
func (c *Catalog) Register(name string, ctor Constructor) {
	c.constructors[name] = ctor
}

// Resolve looks up spec.Generator and returns a fresh Generator instance,
// or ErrUnknownGenerator if the name was never registered.
func (c *Catalog) Resolve(spec *TestSpec) (Generator, error) {
	ctor, ok := c.constructors[spec.Generator]
	if !ok {
		return nil, &ErrUnknownGenerator{Generator: spec.Generator}
	}
	return ctor(), nil
}

// Names returns every generator name currently registered.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.constructors))
	for name := range c.constructors {
		names = append(names, name)
	}
	return names
}
