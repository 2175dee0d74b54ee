// Implements the policy selector ("auto-switch"): it runs the requested
// policy, and when the workload exposes a convoy or starvation pathology it
// substitutes a policy with bounded waiting.

package sim

import (
	"fmt"

	"github.com/influxdata/tdigest"
	"github.com/sirupsen/logrus"
)

// SelectorConfig holds the thresholds of the switching heuristic.
type SelectorConfig struct {
	MinProcesses      int     `yaml:"min_processes" json:"minProcesses"`           // smaller workloads are never overridden
	BurstSpreadRatio  float64 `yaml:"burst_spread_ratio" json:"burstSpreadRatio"`   // p90/p10 of total bursts that counts as dispersed
	SlowdownThreshold float64 `yaml:"slowdown_threshold" json:"slowdownThreshold"` // max turnaround/burst that counts as pathological
}

// DefaultSelectorConfig returns the thresholds used when no defaults file overrides them.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		MinProcesses:      4,
		BurstSpreadRatio:  4,
		SlowdownThreshold: 5,
	}
}

// substitutes maps each override-prone policy to the policy it falls back to.
// Quantum policies, FCFS+I/O and Custom never appear here.
var substitutes = map[Policy]Policy{
	FCFS:               RoundRobin,
	LJF:                RoundRobin,
	SJF:                HRRN,
	Priority:           HRRN,
	SRTF:               RoundRobin,
	LRTF:               RoundRobin,
	PriorityPreemptive: RoundRobin,
}

// Decision is the outcome of Selector.Evaluate.
type Decision struct {
	Requested Policy
	Used      Policy
	Timeline  Timeline // raw timeline of the used policy, markers included
	Reason    string   // empty when Used == Requested
}

// Switched reports whether the selector substituted a policy.
func (d Decision) Switched() bool {
	return d.Reason != ""
}

// Selector decides whether to honor a requested policy. It holds no mutable
// state, so one Selector may serve concurrent simulations.
type Selector struct {
	cfg SelectorConfig
}

// NewSelector creates a Selector. Non-positive thresholds take their defaults.
func NewSelector(cfg SelectorConfig) *Selector {
	def := DefaultSelectorConfig()
	if cfg.MinProcesses <= 0 {
		cfg.MinProcesses = def.MinProcesses
	}
	if cfg.BurstSpreadRatio <= 0 {
		cfg.BurstSpreadRatio = def.BurstSpreadRatio
	}
	if cfg.SlowdownThreshold <= 0 {
		cfg.SlowdownThreshold = def.SlowdownThreshold
	}
	return &Selector{cfg: cfg}
}

// Config returns the effective thresholds.
func (s *Selector) Config() SelectorConfig {
	return s.cfg
}

// Evaluate runs requested over processes and, if the heuristic fires, the
// substitute as well. The returned timeline belongs to Decision.Used.
// The same inputs always produce the same decision.
func (s *Selector) Evaluate(requested Policy, processes []Process, cfg ScheduleConfig) (Decision, error) {
	tl, err := Schedule(requested, processes, cfg)
	if err != nil {
		return Decision{}, err
	}
	decision := Decision{Requested: requested, Used: requested, Timeline: tl}

	substitute, ok := substitutes[requested]
	if !ok || !s.prone(requested, processes) {
		return decision, nil
	}

	results, _, _ := ComputeMetrics(tl, processes)
	worst, _ := MaxSlowdown(results)
	if worst.Slowdown() < s.cfg.SlowdownThreshold {
		return decision, nil
	}

	altTL, err := Schedule(substitute, processes, cfg)
	if err != nil {
		return Decision{}, fmt.Errorf("running substitute %s: %w", substitute, err)
	}
	altResults, _, _ := ComputeMetrics(altTL, processes)
	altWorst, _ := MaxSlowdown(altResults)
	if altWorst.Slowdown() >= worst.Slowdown() {
		logrus.Debugf("[selector] %s slowdown %.2f not improved by %s (%.2f), keeping %s",
			requested, worst.Slowdown(), substitute, altWorst.Slowdown(), requested)
		return decision, nil
	}

	decision.Used = substitute
	decision.Timeline = altTL
	decision.Reason = fmt.Sprintf("%s would make P%d wait %.2fx its burst (%s); %s bounds the worst slowdown at %.2fx.",
		requested.Label(), worst.PID, worst.Slowdown(), pathology(requested), substitute.Label(), altWorst.Slowdown())
	logrus.Infof("[selector] switched %s -> %s: %s", requested, substitute, decision.Reason)
	return decision, nil
}

// prone reports whether the workload has the shape under which requested
// degrades: enough processes, and either dispersed bursts or (for the
// priority policies) more than one priority level.
func (s *Selector) prone(requested Policy, processes []Process) bool {
	if len(processes) < s.cfg.MinProcesses {
		return false
	}
	if BurstSpread(processes) >= s.cfg.BurstSpreadRatio {
		return true
	}
	if requested == Priority || requested == PriorityPreemptive {
		levels := make(map[int]bool)
		for _, p := range processes {
			levels[p.PriorityOrDefault()] = true
		}
		return len(levels) >= 2
	}
	return false
}

// BurstSpread returns the p90/p10 ratio of total bursts, estimated with a
// t-digest. Returns 1 for fewer than two processes or a non-positive p10.
func BurstSpread(processes []Process) float64 {
	if len(processes) < 2 {
		return 1
	}
	td := tdigest.NewWithCompression(100)
	for _, p := range processes {
		td.Add(p.TotalBurst(), 1)
	}
	p10, p90 := td.Quantile(0.10), td.Quantile(0.90)
	if p10 <= 0 {
		return 1
	}
	return p90 / p10
}

func pathology(p Policy) string {
	switch p {
	case FCFS, LJF:
		return "convoy effect"
	default:
		return "starvation"
	}
}
