// Defines the Process descriptor that models one schedulable unit of CPU work,
// and the per-simulation procState that carries its mutable scheduling state.

package sim

import (
	"fmt"
)

const (
	// DefaultStride is the stride assigned to processes that do not set one.
	DefaultStride = 1000.0

	// DefaultQuantum is used when a quantum-driven policy receives a quantum <= 0.
	DefaultQuantum = 2.0
)

// Process is the immutable description of a process supplied by the caller.
// Policies never modify a Process; all scheduling state lives in procState.
type Process struct {
	PID         int       `json:"pid" yaml:"pid"`                                 // Unique, > 0
	ArrivalTime float64   `json:"arrivalTime" yaml:"arrival_time"`                // Time the process enters the system
	BurstTime   float64   `json:"burstTime" yaml:"burst_time"`                    // CPU demand; ignored when Bursts is set
	Priority    *int      `json:"priority,omitempty" yaml:"priority,omitempty"`   // Lower = more urgent (nil = 0)
	Tickets     int       `json:"tickets,omitempty" yaml:"tickets,omitempty"`     // Lottery share weight (0 = 1)
	Stride      float64   `json:"stride,omitempty" yaml:"stride,omitempty"`       // Stride scheduling inverse share (0 = DefaultStride)
	Bursts      []float64 `json:"bursts,omitempty" yaml:"bursts,omitempty"`       // [cpu, io, cpu, io, ...]
}

// IntPtr returns a pointer to v. Convenience for building Process literals.
func IntPtr(v int) *int {
	return &v
}

// PriorityOrDefault returns the priority, or 0 when unset.
func (p Process) PriorityOrDefault() int {
	if p.Priority == nil {
		return 0
	}
	return *p.Priority
}

// TicketsOrDefault returns the lottery weight, never below 1.
func (p Process) TicketsOrDefault() int {
	if p.Tickets < 1 {
		return 1
	}
	return p.Tickets
}

// StrideOrDefault returns the stride, DefaultStride when unset.
func (p Process) StrideOrDefault() float64 {
	if p.Stride <= 0 {
		return DefaultStride
	}
	return p.Stride
}

// TotalBurst returns the total CPU demand: the sum of the CPU phases when
// Bursts is set, BurstTime otherwise.
func (p Process) TotalBurst() float64 {
	if len(p.Bursts) == 0 {
		return p.BurstTime
	}
	total := 0.0
	for i := 0; i < len(p.Bursts); i += 2 {
		total += p.Bursts[i]
	}
	return total
}

// Phases returns the (cpu, io) pairs of the process. A process without Bursts
// has a single phase (BurstTime, 0).
func (p Process) Phases() [][2]float64 {
	if len(p.Bursts) == 0 {
		return [][2]float64{{p.BurstTime, 0}}
	}
	phases := make([][2]float64, 0, (len(p.Bursts)+1)/2)
	for i := 0; i < len(p.Bursts); i += 2 {
		io := 0.0
		if i+1 < len(p.Bursts) {
			io = p.Bursts[i+1]
		}
		phases = append(phases, [2]float64{p.Bursts[i], io})
	}
	return phases
}

func (p Process) String() string {
	return fmt.Sprintf("Process: (PID: %d, Arrival: %v, Burst: %v, Priority: %d)", p.PID, p.ArrivalTime, p.TotalBurst(), p.PriorityOrDefault())
}

// procState is the mutable scheduling record for one process within one
// simulation call. It is keyed by index into runtime.procs.
type procState struct {
	proc  Process
	index int // position in the caller's slice; the stable tie-break order

	remaining  float64 // CPU left in the current phase
	totalBurst float64

	// Multi-phase (FCFS+I/O) bookkeeping.
	phases       [][2]float64
	phase        int
	blockedUntil float64
	readySince   float64

	level   int     // MLQ / MLFQ queue index
	pass    float64 // Stride virtual time
	tickets int
	stride  float64
}

func newProcState(p Process, index int, multiPhase bool) *procState {
	s := &procState{
		proc:       p,
		index:      index,
		totalBurst: p.TotalBurst(),
		readySince: p.ArrivalTime,
		tickets:    p.TicketsOrDefault(),
		stride:     p.StrideOrDefault(),
	}
	if multiPhase {
		s.phases = p.Phases()
		s.remaining = s.phases[0][0]
		s.skipEmptyPhases(p.ArrivalTime)
	} else {
		s.remaining = s.totalBurst
	}
	return s
}

// skipEmptyPhases advances past CPU phases of zero length, folding their I/O
// time into the blocked interval that starts at from.
func (s *procState) skipEmptyPhases(from float64) {
	for s.remaining <= 0 && s.phase < len(s.phases)-1 {
		io := s.phases[s.phase][1]
		s.phase++
		s.remaining = s.phases[s.phase][0]
		from += io
		s.blockedUntil = from
		s.readySince = from
	}
}

func (s *procState) pid() int {
	return s.proc.PID
}

func (s *procState) done() bool {
	return s.remaining <= 0
}
