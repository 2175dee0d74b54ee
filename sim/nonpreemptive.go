// Non-preemptive policies: once selected, a process runs its whole burst.

package sim

import "math"

// runToCompletion builds a step that selects with better and runs the
// selected process for everything it has left.
func runToCompletion(better func(a, b *procState) bool) stepFunc {
	return func(ready []*procState) (*procState, float64) {
		s := selectBest(ready, better)
		return s, s.remaining
	}
}

// fcfs serves the earliest arrival; input order breaks ties.
func (r *runtime) fcfs() Timeline {
	return r.loop(runToCompletion(func(a, b *procState) bool {
		return a.proc.ArrivalTime < b.proc.ArrivalTime
	}))
}

// sjf serves the shortest total burst among ready processes.
func (r *runtime) sjf() Timeline {
	return r.loop(runToCompletion(func(a, b *procState) bool {
		return a.totalBurst < b.totalBurst
	}))
}

// ljf serves the longest total burst among ready processes.
func (r *runtime) ljf() Timeline {
	return r.loop(runToCompletion(func(a, b *procState) bool {
		return a.totalBurst > b.totalBurst
	}))
}

// priority serves the lowest priority value (most urgent).
func (r *runtime) priority() Timeline {
	return r.loop(runToCompletion(func(a, b *procState) bool {
		return a.proc.PriorityOrDefault() < b.proc.PriorityOrDefault()
	}))
}

// hrrn serves the highest response ratio (waiting + remaining) / remaining.
func (r *runtime) hrrn() Timeline {
	return r.loop(runToCompletion(func(a, b *procState) bool {
		return r.responseRatio(a) > r.responseRatio(b)
	}))
}

// responseRatio is computed against the current clock. A process with no
// remaining work never reaches here; the guard keeps the ratio finite anyway.
func (r *runtime) responseRatio(s *procState) float64 {
	if s.remaining <= 0 {
		return math.MaxFloat64
	}
	waiting := r.clock - s.proc.ArrivalTime
	return (waiting + s.remaining) / s.remaining
}
