package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

var (
	// ErrEmptyWorkload is returned when a simulation is requested with no processes.
	ErrEmptyWorkload = errors.New("at least one process is required")

	// ErrDuplicatePID is returned when two processes share a pid.
	ErrDuplicatePID = errors.New("duplicate pid")

	// ErrInvalidPID is returned for a pid that is not positive.
	ErrInvalidPID = errors.New("pid must be positive")

	// ErrNoCPUWork is returned for a process whose total CPU demand is not positive.
	ErrNoCPUWork = errors.New("process has no CPU work")
)

// InputError describes a workload the engine refuses to simulate.
// It wraps one of the sentinel errors above so callers can match with errors.Is.
type InputError struct {
	Field  string
	Detail string
	Err    error
}

func (e *InputError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("invalid input: %v", e.Err)
	}
	return fmt.Sprintf("invalid input (%s): %v: %s", e.Field, e.Err, e.Detail)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Validate rejects workloads that cannot be simulated: an empty process list,
// a non-positive or duplicate pid, or a process with no CPU work. Run
// Normalize first to turn malformed numbers into defaults instead of errors.
func Validate(processes []Process) error {
	if len(processes) == 0 {
		return &InputError{Field: "processes", Err: ErrEmptyWorkload}
	}
	seen := make(map[int]int, len(processes))
	for i, p := range processes {
		if p.PID <= 0 {
			return &InputError{Field: "pid", Detail: fmt.Sprintf("position %d has pid %d", i, p.PID), Err: ErrInvalidPID}
		}
		if j, ok := seen[p.PID]; ok {
			return &InputError{
				Field:  "pid",
				Detail: fmt.Sprintf("pid %d at positions %d and %d", p.PID, j, i),
				Err:    ErrDuplicatePID,
			}
		}
		seen[p.PID] = i
		if !(p.TotalBurst() > 0) {
			return &InputError{
				Field:  "burstTime",
				Detail: fmt.Sprintf("P%d has total burst %v", p.PID, p.TotalBurst()),
				Err:    ErrNoCPUWork,
			}
		}
	}
	return nil
}

// Normalize returns a copy of processes with malformed numeric fields coerced
// to safe defaults: non-positive pid becomes index+1, negative or non-finite
// arrival becomes 0, a non-positive (or non-finite) burst becomes 1, tickets below
// 1 become 1, and a stride below 1 becomes DefaultStride. Multi-phase bursts
// have negative or non-finite phases clamped to 0.
// The input slice is never modified.
func Normalize(processes []Process) []Process {
	out := make([]Process, len(processes))
	for i, p := range processes {
		q := p
		if q.PID <= 0 {
			logrus.Warnf("process at position %d has pid %d, using %d", i, q.PID, i+1)
			q.PID = i + 1
		}
		if !isFinite(q.ArrivalTime) || q.ArrivalTime < 0 {
			logrus.Warnf("P%d: arrival %v coerced to 0", q.PID, q.ArrivalTime)
			q.ArrivalTime = 0
		}
		if len(q.Bursts) == 0 && (!isFinite(q.BurstTime) || q.BurstTime <= 0) {
			logrus.Warnf("P%d: burst %v coerced to 1", q.PID, q.BurstTime)
			q.BurstTime = 1
		}
		if q.Tickets < 1 {
			q.Tickets = 1
		}
		if !isFinite(q.Stride) || q.Stride < 1 {
			q.Stride = DefaultStride
		}
		if q.Priority != nil {
			q.Priority = IntPtr(*q.Priority)
		}
		if len(q.Bursts) > 0 {
			q.Bursts = append([]float64(nil), q.Bursts...)
			for j, b := range q.Bursts {
				if !isFinite(b) || b < 0 {
					q.Bursts[j] = 0
				}
			}
			if q.TotalBurst() <= 0 {
				logrus.Warnf("P%d: bursts carry no CPU time, using a single burst of 1", q.PID)
				q.Bursts = nil
				q.BurstTime = 1
			} else {
				q.BurstTime = q.TotalBurst()
			}
		}
		out[i] = q
	}
	return out
}

// NormalizeQuantum returns DefaultQuantum when q is not a positive finite number.
func NormalizeQuantum(q float64) float64 {
	if !isFinite(q) || q <= 0 {
		return DefaultQuantum
	}
	return q
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
