package workload

import (
	"fmt"

	"github.com/inference-sim/cpusched/sim"
)

// MaxGeneratedProcesses caps the size of a random workload.
const MaxGeneratedProcesses = 50

// GeneratorConfig bounds a random workload. Ranges are inclusive whole numbers.
type GeneratorConfig struct {
	Count           int       `yaml:"count" json:"count"`
	ArrivalMin      int       `yaml:"arrival_min" json:"arrivalMin"`
	ArrivalMax      int       `yaml:"arrival_max" json:"arrivalMax"`
	BurstMin        int       `yaml:"burst_min" json:"burstMin"`
	BurstMax        int       `yaml:"burst_max" json:"burstMax"`
	IncludePriority bool      `yaml:"include_priority" json:"includePriority"`
	PriorityMin     int       `yaml:"priority_min" json:"priorityMin"`
	PriorityMax     int       `yaml:"priority_max" json:"priorityMax"`
	BurstDist       *DistSpec `yaml:"burst_distribution,omitempty" json:"burstDistribution,omitempty"` // overrides BurstMin/BurstMax
}

// DefaultGeneratorConfig returns the generator defaults: five processes
// arriving in [0, 8] with bursts in [1, 10] and priorities in [1, 5].
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Count:           5,
		ArrivalMin:      0,
		ArrivalMax:      8,
		BurstMin:        1,
		BurstMax:        10,
		IncludePriority: true,
		PriorityMin:     1,
		PriorityMax:     5,
	}
}

// Generate draws a random workload. Deterministic given the same config and
// seed. Count is clamped to [1, MaxGeneratedProcesses]; pids are 1..n.
func Generate(cfg GeneratorConfig, seed int64) ([]sim.Process, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed)).ForSubsystem(sim.SubsystemWorkload)

	var bursts BurstSampler = &UniformSampler{min: cfg.BurstMin, max: cfg.BurstMax}
	if cfg.BurstDist != nil {
		s, err := NewBurstSampler(*cfg.BurstDist)
		if err != nil {
			return nil, fmt.Errorf("burst distribution: %w", err)
		}
		bursts = s
	}

	n := cfg.Count
	if n < 1 {
		n = 1
	}
	if n > MaxGeneratedProcesses {
		n = MaxGeneratedProcesses
	}
	arrivalMin := cfg.ArrivalMin
	if arrivalMin < 0 {
		arrivalMin = 0
	}
	arrivalMax := cfg.ArrivalMax
	if arrivalMax < arrivalMin {
		arrivalMax = arrivalMin
	}

	procs := make([]sim.Process, n)
	for i := range procs {
		procs[i] = sim.Process{
			PID:         i + 1,
			ArrivalTime: float64(uniformInt(rng, arrivalMin, arrivalMax)),
			BurstTime:   float64(bursts.Sample(rng)),
		}
		if cfg.IncludePriority {
			procs[i].Priority = sim.IntPtr(uniformInt(rng, cfg.PriorityMin, cfg.PriorityMax))
		}
	}
	return procs, nil
}
