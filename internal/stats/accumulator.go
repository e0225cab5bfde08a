package stats

// Accumulator sums plain float samples and tracks how many were put,
// used for things like bytes-transferred totals.
type Accumulator struct {
	total  float64
	length int64
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator { return &Accumulator{} }

// Put adds value to the running total.
func (a *Accumulator) Put(value float64) {
	a.total += value
	a.length++
}

// PutSample implements Sketch; key is ignored.
func (a *Accumulator) PutSample(_ string, value float64) { a.Put(value) }

// Clear resets the accumulator to empty.
func (a *Accumulator) Clear() {
	a.total = 0
	a.length = 0
}

// Len returns the number of samples put.
func (a *Accumulator) Len() int64 { return a.length }

// Summary reports total and length.
func (a *Accumulator) Summary() map[string]interface{} {
	return map[string]interface{}{"total": a.total, "length": a.length}
}

// ToSnapshot returns the wire image of this accumulator.
func (a *Accumulator) ToSnapshot() Snapshot {
	return Snapshot{
		Type:        KindAccumulator,
		Accumulator: &AccumulatorSnapshot{Total: a.total, Length: a.length},
	}
}

// Merge folds another Accumulator's snapshot into this one.
func (a *Accumulator) Merge(snap Snapshot) error {
	if snap.Type != KindAccumulator || snap.Accumulator == nil {
		return &ErrIncompatibleMerge{Reason: "incompatible accumulators"}
	}
	a.total += snap.Accumulator.Total
	a.length += snap.Accumulator.Length
	return nil
}
