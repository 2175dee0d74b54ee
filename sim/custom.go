// Runs a caller-supplied scheduling decision under the quantum-driven loop.
// The callback is untrusted: it sees a copy of the ready set and nothing else,
// and any fault falls back to the first ready process.

package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// ErrNoDecisionFunc is reported (and recovered) when Custom runs without a callback.
var ErrNoDecisionFunc = errors.New("no decision function")

// ReadyProcess is the view of one ready process handed to a DecisionFunc.
type ReadyProcess struct {
	PID       int     `json:"pid"`
	Remaining float64 `json:"remainingBurst"`
	Arrival   float64 `json:"arrivalTime"`
	Burst     float64 `json:"burstTime"`
	Priority  int     `json:"priority"`
}

// DecisionState is built fresh for every decision; mutating it has no effect
// on the simulation.
type DecisionState struct {
	Time  float64        `json:"time"`
	Ready []ReadyProcess `json:"ready"`
}

// DecisionFunc returns the pid to run for the next quantum.
type DecisionFunc func(state DecisionState) (int, error)

// DefaultMaxSteps bounds the decisions a custom run may take:
// twice the slices Round Robin would need, plus slack for arrivals.
func DefaultMaxSteps(processes []Process, quantum float64) int {
	q := NormalizeQuantum(quantum)
	slices := 0
	for _, p := range processes {
		slices += int(math.Ceil(p.TotalBurst() / q))
	}
	return 2*slices + 64
}

// custom consults decide once per quantum. Returns the timeline and the number
// of slices whose process was not the callback's choice.
func (r *runtime) custom(quantum float64, decide DecisionFunc, maxSteps int) (Timeline, int) {
	if maxSteps <= 0 {
		procs := make([]Process, len(r.procs))
		for i, s := range r.procs {
			procs[i] = s.proc
		}
		maxSteps = DefaultMaxSteps(procs, quantum)
	}
	steps, fallbacks := 0, 0
	tl := r.loop(func(ready []*procState) (*procState, float64) {
		steps++
		if steps > maxSteps {
			if steps == maxSteps+1 {
				logrus.Warnf("[%s] decision step limit %d reached, draining remaining work in arrival order", r.policy, maxSteps)
			}
			fallbacks++
			s := ready[0]
			return s, math.Min(quantum, s.remaining)
		}
		s, err := r.consult(decide, ready)
		if err != nil {
			logrus.Warnf("[%s] t=%v: %v; falling back to P%d", r.policy, r.clock, err, ready[0].pid())
			fallbacks++
			s = ready[0]
		}
		return s, math.Min(quantum, s.remaining)
	})
	return tl, fallbacks
}

// consult invokes decide on a snapshot of ready and resolves the returned pid.
func (r *runtime) consult(decide DecisionFunc, ready []*procState) (*procState, error) {
	if decide == nil {
		return nil, ErrNoDecisionFunc
	}
	state := DecisionState{Time: r.clock, Ready: make([]ReadyProcess, len(ready))}
	for i, s := range ready {
		state.Ready[i] = ReadyProcess{
			PID:       s.pid(),
			Remaining: s.remaining,
			Arrival:   s.proc.ArrivalTime,
			Burst:     s.totalBurst,
			Priority:  s.proc.PriorityOrDefault(),
		}
	}
	pid, err := safeDecide(decide, state)
	if err != nil {
		return nil, err
	}
	for _, s := range ready {
		if s.pid() == pid {
			return s, nil
		}
	}
	return nil, fmt.Errorf("decision returned pid %d, which is not ready", pid)
}

// safeDecide converts a panic inside decide into an error.
func safeDecide(decide DecisionFunc, state DecisionState) (pid int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("decision function panicked: %v", rec)
		}
	}()
	return decide(state)
}

// RunCustom simulates processes under decide with the given quantum and
// context-switch cost. Input is coerced with Normalize. Callback faults never
// surface as errors; they are counted in Result.CustomFallbacks.
func RunCustom(processes []Process, decide DecisionFunc, quantum, cost float64) (*Result, error) {
	return NewEngine(DefaultSelectorConfig()).Simulate(Request{
		Policy:            Custom.String(),
		Processes:         processes,
		Quantum:           quantum,
		ContextSwitchCost: cost,
		Decide:            decide,
	})
}
