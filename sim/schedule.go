package sim

import (
	"fmt"
	"math/rand"
)

// DefaultMLFQLevels is the number of MLFQ queues when ScheduleConfig leaves it unset.
const DefaultMLFQLevels = 3

// ScheduleConfig carries the knobs a policy may read. Zero values select defaults.
type ScheduleConfig struct {
	Quantum    float64      // Slice length for quantum policies; <= 0 means DefaultQuantum
	MLFQLevels int          // Number of MLFQ queues; <= 0 means DefaultMLFQLevels
	RNG        *rand.Rand   // Lottery draws; nil means the lottery stream of DefaultSeed
	Decide     DecisionFunc // Custom policy callback
	MaxSteps   int          // Custom policy step ceiling; <= 0 derives one from the workload
}

func (c ScheduleConfig) quantum() float64 {
	return NormalizeQuantum(c.Quantum)
}

func (c ScheduleConfig) mlfqLevels() int {
	if c.MLFQLevels <= 0 {
		return DefaultMLFQLevels
	}
	return c.MLFQLevels
}

func (c ScheduleConfig) rng() *rand.Rand {
	if c.RNG != nil {
		return c.RNG
	}
	return NewPartitionedRNG(NewSimulationKey(DefaultSeed)).ForSubsystem(SubsystemLottery)
}

// Schedule runs one policy over processes and returns the raw timeline,
// context-switch markers included. Processes are validated but not coerced;
// callers holding untrusted input should pass them through Normalize first.
// The processes slice is never modified.
func Schedule(policy Policy, processes []Process, cfg ScheduleConfig) (Timeline, error) {
	if err := Validate(processes); err != nil {
		return nil, err
	}
	tl, _ := schedule(policy, processes, cfg)
	return tl, nil
}

// schedule dispatches to the policy implementation. The second return value
// is the custom-policy fallback count and is zero for built-in policies.
// Panics on a Policy value outside the declared set.
func schedule(policy Policy, processes []Process, cfg ScheduleConfig) (Timeline, int) {
	r := newRuntime(policy, processes)
	switch policy {
	case FCFS:
		return r.fcfs(), 0
	case SJF:
		return r.sjf(), 0
	case LJF:
		return r.ljf(), 0
	case Priority:
		return r.priority(), 0
	case HRRN:
		return r.hrrn(), 0
	case SRTF:
		return r.srtf(), 0
	case LRTF:
		return r.lrtf(), 0
	case PriorityPreemptive:
		return r.priorityPreemptive(), 0
	case RoundRobin:
		return r.roundRobin(cfg.quantum()), 0
	case Lottery:
		return r.lottery(cfg.quantum(), cfg.rng()), 0
	case Stride:
		return r.stride(cfg.quantum()), 0
	case FCFSIO:
		return r.fcfsIO(), 0
	case MLQ:
		return r.mlq(cfg.quantum()), 0
	case MLFQ:
		return r.mlfq(cfg.quantum(), cfg.mlfqLevels()), 0
	case Custom:
		return r.custom(cfg.quantum(), cfg.Decide, cfg.MaxSteps)
	default:
		panic(fmt.Sprintf("unhandled policy %d", int(policy)))
	}
}
