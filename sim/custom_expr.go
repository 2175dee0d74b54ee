package sim

import (
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// scoreEnvTemplate declares the variables a score expression may reference.
var scoreEnvTemplate = map[string]any{
	"pid":       0,
	"remaining": 0.0,
	"arrival":   0.0,
	"burst":     0.0,
	"priority":  0,
	"time":      0.0,
	"waiting":   0.0,
}

// CompileScoreExpr compiles src into a DecisionFunc. The expression is
// evaluated once per ready process and must yield a number; the process with
// the lowest score runs next, the first encountered on ties. Available
// variables: pid, remaining, arrival, burst, priority, time, waiting
// (time - arrival). For example "remaining" behaves like shortest remaining
// time, and "priority * 100 + arrival" like priority with FCFS inside a level.
func CompileScoreExpr(src string) (DecisionFunc, error) {
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("empty score expression")
	}
	program, err := expr.Compile(src, expr.Env(scoreEnvTemplate), expr.AsFloat64())
	if err != nil {
		return nil, fmt.Errorf("compiling score expression: %w", err)
	}
	return func(state DecisionState) (int, error) {
		return lowestScore(program, state)
	}, nil
}

func lowestScore(program *vm.Program, state DecisionState) (int, error) {
	if len(state.Ready) == 0 {
		return 0, fmt.Errorf("no ready process")
	}
	bestPID, bestScore := 0, math.Inf(1)
	for i, rp := range state.Ready {
		env := map[string]any{
			"pid":       rp.PID,
			"remaining": rp.Remaining,
			"arrival":   rp.Arrival,
			"burst":     rp.Burst,
			"priority":  rp.Priority,
			"time":      state.Time,
			"waiting":   state.Time - rp.Arrival,
		}
		out, err := expr.Run(program, env)
		if err != nil {
			return 0, fmt.Errorf("evaluating score for P%d: %w", rp.PID, err)
		}
		score, ok := out.(float64)
		if !ok || math.IsNaN(score) {
			return 0, fmt.Errorf("score for P%d is not a number: %v", rp.PID, out)
		}
		if i == 0 || score < bestScore {
			bestPID, bestScore = rp.PID, score
		}
	}
	return bestPID, nil
}
