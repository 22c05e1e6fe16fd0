package merge

// Tracker remembers which merged regions a scan has already emitted, so each
// region is processed exactly once whichever of its cells is seen first.
type Tracker struct {
	regions  []Region
	consumed map[string]bool
}

// NewTracker creates a tracker over regions.
func NewTracker(regions []Region) *Tracker {
	return &Tracker{regions: regions, consumed: make(map[string]bool, len(regions))}
}

// Claim looks up the region covering (row, col). It returns nil when the cell
// is not merged. first is true only the first time any cell of the region is
// claimed; every later claim returns the same region with first false.
func (t *Tracker) Claim(row, col int) (region *Region, first bool) {
	r := Find(row, col, t.regions)
	if r == nil {
		return nil, false
	}
	key := r.Key()
	if t.consumed[key] {
		return r, false
	}
	t.consumed[key] = true
	return r, true
}

// Pending returns the regions that have not been claimed yet, in declaration order.
func (t *Tracker) Pending() []Region {
	var out []Region
	for _, r := range t.regions {
		if !t.consumed[r.Key()] {
			out = append(out, r)
		}
	}
	return out
}
