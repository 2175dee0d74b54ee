// Implements the Engine, the single entry point that turns a simulation
// request into a finished Result: coercion, validation, policy selection,
// context-switch cost and metrics.

package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/inference-sim/cpusched/sim/trace"
)

const tracerName = "github.com/inference-sim/cpusched/sim"

// Request describes one simulation.
type Request struct {
	Policy            string            `json:"algorithm" yaml:"policy"`
	Processes         []Process         `json:"processes" yaml:"processes"`
	Quantum           float64           `json:"timeQuantum,omitempty" yaml:"quantum,omitempty"`
	ContextSwitchCost float64           `json:"contextSwitchCost,omitempty" yaml:"context_switch_cost,omitempty"`
	DisableAutoSwitch bool              `json:"disableAutoSwitch,omitempty" yaml:"disable_auto_switch,omitempty"`
	Seed              int64             `json:"seed,omitempty" yaml:"seed,omitempty"` // 0 means DefaultSeed
	MLFQLevels        int               `json:"mlfqLevels,omitempty" yaml:"mlfq_levels,omitempty"`
	MaxSteps          int               `json:"-" yaml:"-"`
	Decide            DecisionFunc      `json:"-" yaml:"-"`
	Trace             trace.TraceConfig `json:"-" yaml:"-"`
}

// Result is the outcome of one simulation.
type Result struct {
	RunID           string                 `json:"runId" yaml:"run_id"`
	RequestedPolicy Policy                 `json:"chosenAlgorithm" yaml:"requested_policy"`
	UsedPolicy      Policy                 `json:"usedAlgorithm" yaml:"used_policy"`
	SwitchReason    string                 `json:"reasonSwitched,omitempty" yaml:"switch_reason,omitempty"`
	Quantum         float64                `json:"timeQuantum,omitempty" yaml:"quantum,omitempty"`
	Timeline        Timeline               `json:"ganttChart" yaml:"timeline"`
	Metrics         Metrics                `json:"metrics" yaml:"metrics"`
	Processes       []ProcessResult        `json:"processes" yaml:"processes"`
	ContextSwitches int                    `json:"contextSwitches" yaml:"context_switches"`
	CustomFallbacks int                    `json:"customFallbacks,omitempty" yaml:"custom_fallbacks,omitempty"`
	Trace           *trace.SimulationTrace `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Switched reports whether the selector replaced the requested policy.
func (r *Result) Switched() bool {
	return r.SwitchReason != ""
}

// Engine runs simulations. It holds only immutable configuration and is safe
// for concurrent use.
type Engine struct {
	selector *Selector
}

// NewEngine creates an Engine whose selector uses cfg.
func NewEngine(cfg SelectorConfig) *Engine {
	return &Engine{selector: NewSelector(cfg)}
}

// Selector returns the engine's policy selector.
func (e *Engine) Selector() *Selector {
	return e.selector
}

// Simulate runs req to completion. The only errors are *InputError values
// for workloads that cannot be simulated.
func (e *Engine) Simulate(req Request) (*Result, error) {
	return e.SimulateContext(context.Background(), req)
}

// SimulateContext is Simulate with a parent context for span propagation.
func (e *Engine) SimulateContext(ctx context.Context, req Request) (*Result, error) {
	policy := ParsePolicy(req.Policy)
	_, span := otel.Tracer(tracerName).Start(ctx, "sim.Simulate", oteltrace.WithAttributes(
		attribute.String("policy.requested", policy.String()),
		attribute.Int("processes", len(req.Processes)),
	))
	defer span.End()

	res, err := e.simulate(policy, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("policy.used", res.UsedPolicy.String()),
		attribute.String("run.id", res.RunID),
		attribute.Int("context_switches", res.ContextSwitches),
		attribute.Float64("avg_waiting_time", res.Metrics.AvgWaitingTime),
	)
	return res, nil
}

func (e *Engine) simulate(policy Policy, req Request) (*Result, error) {
	procs := Normalize(req.Processes)
	if err := Validate(procs); err != nil {
		return nil, err
	}

	seed := req.Seed
	if seed == 0 {
		seed = DefaultSeed
	}
	cfg := ScheduleConfig{
		Quantum:    NormalizeQuantum(req.Quantum),
		MLFQLevels: req.MLFQLevels,
		RNG:        NewPartitionedRNG(NewSimulationKey(seed)).ForSubsystem(SubsystemLottery),
		Decide:     req.Decide,
		MaxSteps:   req.MaxSteps,
	}

	decision := Decision{Requested: policy, Used: policy}
	fallbacks := 0
	switch {
	case policy == Custom:
		decision.Timeline, fallbacks = schedule(Custom, procs, cfg)
	case req.DisableAutoSwitch:
		tl, err := Schedule(policy, procs, cfg)
		if err != nil {
			return nil, err
		}
		decision.Timeline = tl
	default:
		d, err := e.selector.Evaluate(policy, procs, cfg)
		if err != nil {
			return nil, err
		}
		decision = d
	}

	res := finalize(decision.Timeline, procs, req.ContextSwitchCost)
	res.RunID = uuid.NewString()
	res.RequestedPolicy = decision.Requested
	res.UsedPolicy = decision.Used
	res.SwitchReason = decision.Reason
	res.CustomFallbacks = fallbacks
	if decision.Used.UsesQuantum() {
		res.Quantum = cfg.Quantum
	}
	if st := Narrate(decision.Used, res.Timeline, procs, req.Trace); st != nil {
		st.RecordSelection(trace.SelectionRecord{
			Requested: decision.Requested.String(),
			Used:      decision.Used.String(),
			Reason:    decision.Reason,
		})
		res.Trace = st
	}

	logrus.Infof("[run %s] %s -> %s: %d processes, avg wait %.2f, avg tat %.2f, %d switches",
		res.RunID, res.RequestedPolicy, res.UsedPolicy, len(procs),
		res.Metrics.AvgWaitingTime, res.Metrics.AvgTurnaroundTime, res.ContextSwitches)
	return res, nil
}

// finalize applies the context-switch cost and derives metrics. With a
// positive cost the markers become real blocks and stay in the timeline;
// otherwise metrics count the markers and the output timeline drops them.
func finalize(raw Timeline, procs []Process, cost float64) *Result {
	res := &Result{}
	if cost > 0 {
		res.Timeline = InjectContextSwitchCost(raw, cost)
		res.Processes, res.Metrics, res.ContextSwitches = ComputeMetrics(res.Timeline, procs)
		return res
	}
	res.Processes, res.Metrics, res.ContextSwitches = ComputeMetrics(raw, procs)
	res.Timeline = StripContextSwitches(raw)
	return res
}

// Compare runs base once per policy, concurrently, and returns the results
// in the order of policies. Every run gets its own RNG stream, so results
// match sequential Simulate calls.
func (e *Engine) Compare(ctx context.Context, base Request, policies []string) ([]*Result, error) {
	if len(policies) == 0 {
		return nil, fmt.Errorf("compare: no policies given")
	}
	results := make([]*Result, len(policies))
	errs := make([]error, len(policies))
	var wg sync.WaitGroup
	for i, name := range policies {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			req := base
			req.Policy = name
			results[i], errs[i] = e.SimulateContext(ctx, req)
		}(i, name)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("compare %s: %w", policies[i], err)
		}
	}
	return results, nil
}
