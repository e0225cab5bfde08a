package stats

// Uniques is a keyed multiset that also reports cardinality — the number
// of distinct keys seen — alongside per-key counts. Used for things like
// distinct-user-id tracking.
type Uniques struct {
	items map[string]int64
}

// NewUniques returns an empty Uniques sketch.
func NewUniques() *Uniques { return &Uniques{items: make(map[string]int64)} }

// Put increments the count for key.
func (u *Uniques) Put(key string) { u.items[key]++ }

// PutSample implements Sketch: key is the multiset key, value is ignored.
func (u *Uniques) PutSample(key string, _ float64) { u.Put(key) }

// Clear resets the sketch to empty.
func (u *Uniques) Clear() { u.items = make(map[string]int64) }

// Len returns the total number of Put calls across all keys.
func (u *Uniques) Len() int64 {
	var total int64
	for _, v := range u.items {
		total += v
	}
	return total
}

// Cardinality returns the number of distinct keys seen.
func (u *Uniques) Cardinality() int64 { return int64(len(u.items)) }

// Summary reports the per-key counts and the cardinality.
func (u *Uniques) Summary() map[string]interface{} {
	items := make(map[string]int64, len(u.items))
	for k, v := range u.items {
		items[k] = v
	}
	return map[string]interface{}{"items": items, "uniqs": u.Cardinality()}
}

// ToSnapshot returns the wire image of this sketch.
func (u *Uniques) ToSnapshot() Snapshot {
	items := make(map[string]int64, len(u.items))
	for k, v := range u.items {
		items[k] = v
	}
	return Snapshot{
		Type:    KindUniques,
		Uniques: &UniquesSnapshot{Items: items, Uniqs: u.Cardinality()},
	}
}

// Merge folds another Uniques snapshot into this one, summing counts key
// by key. Cardinality is recomputed from the merged key set, not summed.
func (u *Uniques) Merge(snap Snapshot) error {
	if snap.Type != KindUniques || snap.Uniques == nil {
		return &ErrIncompatibleMerge{Reason: "incompatible uniques"}
	}
	for k, v := range snap.Uniques.Items {
		u.items[k] += v
	}
	return nil
}
