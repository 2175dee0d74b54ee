// Package sim provides the core discrete-event engine for CPU scheduling simulation.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - process.go: Process descriptors and the per-run procState records
//   - runtime.go: The shared event loop (ready set, idle jumps, slice dispatch, markers)
//   - schedule.go: Policy dispatch; one file per policy family implements the selection rules
//   - engine.go: The Engine facade that coerces input, consults the selector and derives metrics
//
// # Architecture
//
// Every policy is a method on a fresh runtime arena, so descriptors are never
// mutated and nothing is retained between calls. Policies emit a raw Timeline
// with zero-length context-switch markers; InjectContextSwitchCost expands them
// and ComputeMetrics derives per-process and aggregate figures.
//
// Sub-packages:
//   - sim/workload/: Workload files, presets and random workload generation
//   - sim/trace/: Step-by-step decision trace recording
//
// # Extension Points
//   - DecisionFunc: a caller-supplied policy, run by the Custom policy with
//     panic recovery and a step ceiling (CompileScoreExpr builds one from an expression)
//   - SelectorConfig: thresholds of the auto-switch heuristic
package sim
