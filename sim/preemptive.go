// Preemptive policies without a quantum: the selection is re-evaluated at
// every arrival, and the incumbent keeps the CPU on ties.

package sim

import "math"

// untilNextArrival builds a step that selects with better (incumbent first)
// and runs until the selected process finishes or the next arrival. An
// incumbent that survives an arrival continues its previous entry.
func (r *runtime) untilNextArrival(better func(a, b *procState) bool) stepFunc {
	r.coalesce = true
	return func(ready []*procState) (*procState, float64) {
		s := selectBest(r.incumbentFirst(ready), better)
		return s, math.Min(s.remaining, r.nextArrival()-r.clock)
	}
}

// srtf runs the ready process with the least remaining work.
func (r *runtime) srtf() Timeline {
	return r.loop(r.untilNextArrival(func(a, b *procState) bool {
		return a.remaining < b.remaining
	}))
}

// lrtf runs the ready process with the most remaining work.
func (r *runtime) lrtf() Timeline {
	return r.loop(r.untilNextArrival(func(a, b *procState) bool {
		return a.remaining > b.remaining
	}))
}

// priorityPreemptive runs the most urgent ready process; an arrival with a
// strictly lower priority value takes the CPU.
func (r *runtime) priorityPreemptive() Timeline {
	return r.loop(r.untilNextArrival(func(a, b *procState) bool {
		return a.proc.PriorityOrDefault() < b.proc.PriorityOrDefault()
	}))
}
