package stats

// Reportable pairs an interval sketch with its cumulative twin. Next()
// rotates the interval sketch out and starts a fresh one without touching
// cumulative; Merge takes a raw snapshot (not another Reportable) and folds
// it into both — the asymmetry matches how a progress report is a
// snapshot taken from the sender's interval sketch, never a Reportable
// itself.
type Reportable struct {
	Name       string
	Cumulative Sketch
	Interval   Sketch

	kind   string
	params map[string]interface{}
}

// NewReportable builds a named Reportable of the given kind, used as soon
// as a new stat name is first seen in a progress report (spec.md §4.2).
func NewReportable(name, kind string, params map[string]interface{}) (*Reportable, error) {
	cumulative, err := NewSketch(kind, params)
	if err != nil {
		return nil, err
	}
	interval, err := NewSketch(kind, params)
	if err != nil {
		return nil, err
	}
	return &Reportable{
		Name:       name,
		Cumulative: cumulative,
		Interval:   interval,
		kind:       kind,
		params:     params,
	}, nil
}

// Merge folds a raw snapshot into both the interval and cumulative
// sketches.
func (r *Reportable) Merge(snap Snapshot) error {
	if err := r.Interval.Merge(snap); err != nil {
		return err
	}
	return r.Cumulative.Merge(snap)
}

// Next clears the interval sketch, keeping cumulative intact, and returns
// the snapshot the interval sketch held just before clearing.
func (r *Reportable) Next() Snapshot {
	snap := r.Interval.ToSnapshot()
	r.Interval.Clear()
	return snap
}

// Summary reports both the interval and cumulative summaries.
func (r *Reportable) Summary() map[string]interface{} {
	return map[string]interface{}{
		"interval":   r.Interval.Summary(),
		"cumulative": r.Cumulative.Summary(),
	}
}

// Length returns the cumulative sketch's sample count.
func (r *Reportable) Length() int64 { return r.Cumulative.Len() }
