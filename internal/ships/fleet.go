package ships

import "sort"

// Fleet is the ship registry. Ships are addressed by index; removals are
// deferred until Reap so indices stay valid for a whole tick.
type Fleet struct {
	Ships   []Ship
	pending []int
}

// Add appends a ship and returns its index.
func (f *Fleet) Add(s Ship) int {
	f.Ships = append(f.Ships, s)
	return len(f.Ships) - 1
}

// Len returns the number of ships, including any marked for removal.
func (f *Fleet) Len() int {
	return len(f.Ships)
}

// At returns a pointer into the registry. It is invalidated by Add and Reap.
func (f *Fleet) At(i int) *Ship {
	return &f.Ships[i]
}

// MarkKilled schedules ship i for removal at the next Reap. Repeated marks
// are ignored.
func (f *Fleet) MarkKilled(i int) {
	for _, k := range f.pending {
		if k == i {
			return
		}
	}
	f.pending = append(f.pending, i)
}

// Pending returns the indices scheduled for removal.
func (f *Fleet) Pending() []int {
	return f.pending
}

// Reap removes every marked ship and patches prey references held by the
// survivors: a reference to a removed ship becomes Wander, and references
// above it shift down by one. Returns the removed indices in descending
// order.
func (f *Fleet) Reap() []int {
	if len(f.pending) == 0 {
		return nil
	}
	killed := f.pending
	f.pending = nil
	sort.Sort(sort.Reverse(sort.IntSlice(killed)))

	for _, k := range killed {
		f.Ships = append(f.Ships[:k], f.Ships[k+1:]...)
		for i := range f.Ships {
			g := &f.Ships[i].Goal
			if g.Prey == NoPrey {
				continue
			}
			switch {
			case g.Prey == k:
				*g = Wander()
			case g.Prey > k:
				g.Prey--
			}
		}
	}
	return killed
}

// Count returns the number of ships with the given job.
func (f *Fleet) Count(kind JobKind) int {
	n := 0
	for i := range f.Ships {
		if f.Ships[i].Job.Kind == kind {
			n++
		}
	}
	return n
}
