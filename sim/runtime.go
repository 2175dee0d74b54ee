// Implements the discrete-event loop shared by every policy: the ready set,
// clock jumps over idle gaps, and slice dispatch with context-switch markers.

package sim

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// timeEpsilon absorbs floating-point residue when subtracting fractional slices.
const timeEpsilon = 1e-9

// runtime is the per-call scheduling arena. It is built fresh by every
// policy invocation and never shared.
type runtime struct {
	policy     Policy
	preemptive bool
	procs      []*procState
	admitted   []bool // queue-based policies: process has entered a queue
	clock      float64
	timeline   Timeline
	lastPID    int  // pid of the previous slice if it did not finish; 0 otherwise
	coalesce   bool // extend the previous entry when the same pid keeps the CPU
}

func newRuntime(policy Policy, processes []Process) *runtime {
	r := &runtime{
		policy:     policy,
		preemptive: policy.Preemptive(),
		procs:      make([]*procState, len(processes)),
		admitted:   make([]bool, len(processes)),
		timeline:   make(Timeline, 0, 2*len(processes)),
	}
	multiPhase := policy == FCFSIO
	for i, p := range processes {
		r.procs[i] = newProcState(p, i, multiPhase)
	}
	return r
}

// ready returns the processes that have arrived, have CPU work left in the
// current phase, and are not blocked on I/O. Order is the caller's input order.
func (r *runtime) ready() []*procState {
	out := make([]*procState, 0, len(r.procs))
	for _, s := range r.procs {
		if s.proc.ArrivalTime <= r.clock && !s.done() && s.blockedUntil <= r.clock {
			out = append(out, s)
		}
	}
	return out
}

// pending reports whether any process still has work.
func (r *runtime) pending() bool {
	for _, s := range r.procs {
		if !s.done() {
			return true
		}
	}
	return false
}

// nextEvent returns the earliest arrival or I/O completion strictly after the clock.
func (r *runtime) nextEvent() (float64, bool) {
	next := math.Inf(1)
	for _, s := range r.procs {
		if s.done() {
			continue
		}
		if s.proc.ArrivalTime > r.clock && s.proc.ArrivalTime < next {
			next = s.proc.ArrivalTime
		}
		if s.blockedUntil > r.clock && s.blockedUntil < next {
			next = s.blockedUntil
		}
	}
	return next, !math.IsInf(next, 1)
}

// nextArrival returns the earliest arrival strictly after the clock, or +Inf.
func (r *runtime) nextArrival() float64 {
	next := math.Inf(1)
	for _, s := range r.procs {
		if !s.done() && s.proc.ArrivalTime > r.clock && s.proc.ArrivalTime < next {
			next = s.proc.ArrivalTime
		}
	}
	return next
}

// idle jumps the clock to the next event. Returns false when no future event
// exists, which means the remaining work can never become ready.
func (r *runtime) idle() bool {
	next, ok := r.nextEvent()
	if !ok {
		return false
	}
	logrus.Debugf("[%s] idle %v -> %v", r.policy, r.clock, next)
	r.clock = next
	return true
}

// admit returns processes that have arrived but were never queued, ordered by
// arrival time then input order, and marks them admitted.
func (r *runtime) admit() []*procState {
	var out []*procState
	for i, s := range r.procs {
		if !r.admitted[i] && !s.done() && s.proc.ArrivalTime <= r.clock {
			r.admitted[i] = true
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].proc.ArrivalTime < out[j].proc.ArrivalTime
	})
	return out
}

// dispatch runs s for duration starting at the current clock. A zero-length
// marker precedes the slice when a preemptive policy switches away from an
// unfinished process.
func (r *runtime) dispatch(s *procState, duration float64) {
	if r.preemptive && r.lastPID != 0 && r.lastPID != s.pid() {
		r.timeline = append(r.timeline, TimelineEntry{
			PID: ContextSwitchPID, Start: r.clock, End: r.clock, IsContextSwitch: true,
		})
	}
	start := r.clock
	s.remaining -= duration
	if s.remaining < timeEpsilon {
		s.remaining = 0
	}
	r.clock += duration
	if n := len(r.timeline); r.coalesce && n > 0 && r.timeline[n-1].PID == s.pid() && r.timeline[n-1].End == start {
		r.timeline[n-1].End = r.clock
	} else {
		r.timeline = append(r.timeline, TimelineEntry{PID: s.pid(), Start: start, End: r.clock})
	}
	logrus.Debugf("[%s] P%d runs %v-%v (remaining %v)", r.policy, s.pid(), start, r.clock, s.remaining)

	if s.done() {
		r.lastPID = 0
	} else {
		r.lastPID = s.pid()
	}
}

// stepFunc picks the next process from a non-empty ready set and how long it runs.
type stepFunc func(ready []*procState) (*procState, float64)

// loop drives the simulation until no work remains. When the chosen duration
// is not positive the clock jumps to the next event instead of dispatching.
func (r *runtime) loop(step stepFunc) Timeline {
	for r.pending() {
		ready := r.ready()
		if len(ready) == 0 {
			if !r.idle() {
				break
			}
			continue
		}
		s, duration := step(ready)
		if duration <= 0 {
			if r.idle() {
				continue
			}
			duration = s.remaining
		}
		r.dispatch(s, duration)
	}
	return r.timeline
}

// selectBest returns the first candidate that no later candidate strictly
// beats. better(a, b) reports whether a should replace the current best b.
func selectBest(cands []*procState, better func(a, b *procState) bool) *procState {
	best := cands[0]
	for _, c := range cands[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best
}

// incumbentFirst moves the process that ran the previous slice (if it is
// still ready) to the front so it wins ties.
func (r *runtime) incumbentFirst(ready []*procState) []*procState {
	if r.lastPID == 0 {
		return ready
	}
	for i, s := range ready {
		if s.pid() == r.lastPID {
			if i == 0 {
				return ready
			}
			out := make([]*procState, 0, len(ready))
			out = append(out, s)
			out = append(out, ready[:i]...)
			return append(out, ready[i+1:]...)
		}
	}
	return ready
}
