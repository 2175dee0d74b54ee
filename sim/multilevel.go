// Queue-driven policies: Round Robin is the single-level case of the
// multilevel driver that also serves MLQ and MLFQ.

package sim

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// demoteFunc adjusts a preempted process's level after a slice of length used.
type demoteFunc func(s *procState, used float64)

// multilevel serves the lowest non-empty level, Round Robin within a level.
// Processes arriving during a slice are enqueued before the preempted process
// goes back to the tail of its level.
func (r *runtime) multilevel(quantum float64, levels []int, demote demoteFunc) Timeline {
	queues := make(map[int]*ReadyQueue, len(levels))
	for _, l := range levels {
		queues[l] = &ReadyQueue{}
	}
	admit := func() {
		for _, s := range r.admit() {
			queues[s.level].Enqueue(s)
		}
	}
	next := func() *procState {
		for _, l := range levels {
			if s := queues[l].Dequeue(); s != nil {
				return s
			}
		}
		return nil
	}

	for r.pending() {
		admit()
		s := next()
		if s == nil {
			if !r.idle() {
				break
			}
			continue
		}
		used := math.Min(quantum, s.remaining)
		r.dispatch(s, used)
		admit()
		if s.done() {
			continue
		}
		if demote != nil {
			demote(s, used)
		}
		queues[s.level].Enqueue(s)
	}
	return r.timeline
}

// roundRobin serves a single FIFO queue, one quantum at a time.
func (r *runtime) roundRobin(quantum float64) Timeline {
	return r.multilevel(quantum, []int{0}, nil)
}

// mlq pins each process to the queue named by its priority.
func (r *runtime) mlq(quantum float64) Timeline {
	seen := make(map[int]bool)
	var levels []int
	for _, s := range r.procs {
		s.level = s.proc.PriorityOrDefault()
		if !seen[s.level] {
			seen[s.level] = true
			levels = append(levels, s.level)
		}
	}
	sort.Ints(levels)
	return r.multilevel(quantum, levels, nil)
}

// mlfq starts every process at level 0 and demotes one level each time a
// process uses its full quantum without finishing. The last level is a floor.
func (r *runtime) mlfq(quantum float64, numLevels int) Timeline {
	levels := make([]int, numLevels)
	for i := range levels {
		levels[i] = i
	}
	return r.multilevel(quantum, levels, func(s *procState, used float64) {
		if used >= quantum && s.level < numLevels-1 {
			s.level++
			logrus.Debugf("[%s] P%d demoted to level %d", r.policy, s.pid(), s.level)
		}
	})
}
