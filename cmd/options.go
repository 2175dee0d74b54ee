package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/inference-sim/cpusched/sim"
	"github.com/inference-sim/cpusched/sim/trace"
	"github.com/inference-sim/cpusched/sim/workload"
)

// runOptions are the simulation settings shared by the CLI and the HTTP API.
type runOptions struct {
	Policy       string
	Quantum      float64
	SwitchCost   float64
	NoAutoSwitch bool
	Seed         int64
	MLFQLevels   int
	CustomExpr   string
	Explain      bool
}

// request turns the options into an engine request over procs.
// A score expression implies the custom policy; pairing it with any other
// policy is an error, as is asking for the custom policy without one.
func (o runOptions) request(procs []sim.Process) (sim.Request, error) {
	req := sim.Request{
		Policy:            o.Policy,
		Processes:         procs,
		Quantum:           o.Quantum,
		ContextSwitchCost: o.SwitchCost,
		DisableAutoSwitch: o.NoAutoSwitch,
		Seed:              o.Seed,
		MLFQLevels:        o.MLFQLevels,
	}
	isCustom := strings.TrimSpace(o.Policy) == "" || sim.ParsePolicy(o.Policy) == sim.Custom
	switch {
	case o.CustomExpr != "" && !isCustom:
		return req, fmt.Errorf("a custom expression requires the custom policy, got %q", o.Policy)
	case o.CustomExpr != "":
		decide, err := sim.CompileScoreExpr(o.CustomExpr)
		if err != nil {
			return req, err
		}
		req.Policy = sim.Custom.String()
		req.Decide = decide
	case sim.ParsePolicy(o.Policy) == sim.Custom:
		return req, fmt.Errorf("the custom policy requires a score expression")
	}
	if o.Explain {
		req.Trace = trace.TraceConfig{Level: trace.TraceLevelSteps, Narrative: true}
	}
	return req, nil
}

// workloadSource names where the processes come from. Exactly one field is set.
type workloadSource struct {
	URL    string
	Preset string
	Random int
}

// resolve loads the workload. Presets are looked up in presets; random
// workloads use the generator defaults with Count overridden and seed.
func (s workloadSource) resolve(ctx context.Context, presets []workload.Preset, seed int64) (*workload.Scenario, error) {
	set := 0
	for _, on := range []bool{s.URL != "", s.Preset != "", s.Random > 0} {
		if on {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of --workload, --preset or --random is required")
	}

	switch {
	case s.URL != "":
		return workload.Load(ctx, s.URL)
	case s.Preset != "":
		p, ok := workload.FindPreset(presets, s.Preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q (see `cpusched presets`)", s.Preset)
		}
		return &workload.Scenario{Name: p.Name, Processes: p.Processes}, nil
	default:
		cfg := workload.DefaultGeneratorConfig()
		cfg.Count = s.Random
		procs, err := workload.Generate(cfg, seed)
		if err != nil {
			return nil, err
		}
		return &workload.Scenario{Name: fmt.Sprintf("random-%d", len(procs)), Processes: procs}, nil
	}
}
