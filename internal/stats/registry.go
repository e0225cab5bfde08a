package stats

import "sync"

// Registry is a mutex-guarded named collection of Reportables, one per
// distinct stat name seen across progress reports. A name exists in the
// registry iff it has been reported at least once — generalized from the
// teacher's analytics.statsCache mutex-guarded map convention.
type Registry struct {
	mu    sync.Mutex
	byName map[string]*Reportable
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Reportable)}
}

// Merge folds a snapshot reported under name into the registry, creating
// a new Reportable of the snapshot's kind on first sight.
func (reg *Registry) Merge(name string, snap Snapshot) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.byName[name]
	if !ok {
		created, err := NewReportable(name, snap.Type, snap.Params)
		if err != nil {
			return err
		}
		reg.byName[name] = created
		r = created
	}
	return r.Merge(snap)
}

// Get returns the Reportable for name, if it has been reported.
func (reg *Registry) Get(name string) (*Reportable, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.byName[name]
	return r, ok
}

// Names returns every stat name currently in the registry.
func (reg *Registry) Names() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	names := make([]string, 0, len(reg.byName))
	for name := range reg.byName {
		names = append(names, name)
	}
	return names
}

// Next rotates every Reportable's interval sketch and returns the set of
// interval snapshots taken, keyed by name. Called once per progress
// window firing on the master, and once per progress push on a slave.
func (reg *Registry) Next() map[string]Snapshot {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make(map[string]Snapshot, len(reg.byName))
	for name, r := range reg.byName {
		out[name] = r.Next()
	}
	return out
}

// Summaries returns the interval/cumulative summary for every Reportable,
// keyed by name.
func (reg *Registry) Summaries() map[string]map[string]interface{} {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make(map[string]map[string]interface{}, len(reg.byName))
	for name, r := range reg.byName {
		out[name] = r.Summary()
	}
	return out
}

// Clear empties the registry, used once every slave of a run is terminal,
// just before the pool invokes its completion callback.
func (reg *Registry) Clear() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.byName = make(map[string]*Reportable)
}
