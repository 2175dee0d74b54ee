package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/cpusched/sim"
	"github.com/inference-sim/cpusched/sim/workload"
)

func convoy(t *testing.T) []sim.Process {
	t.Helper()
	p, ok := workload.FindPreset(workload.BuiltinPresets(), "convoy-effect")
	require.True(t, ok)
	return p.Processes
}

func TestRunOptions_Request_MapsFields(t *testing.T) {
	o := runOptions{Policy: "rr", Quantum: 3, SwitchCost: 0.5, NoAutoSwitch: true, Seed: 9, MLFQLevels: 4, Explain: true}

	req, err := o.request(convoy(t))
	require.NoError(t, err)

	assert.Equal(t, "rr", req.Policy)
	assert.Equal(t, 3.0, req.Quantum)
	assert.Equal(t, 0.5, req.ContextSwitchCost)
	assert.True(t, req.DisableAutoSwitch)
	assert.Equal(t, int64(9), req.Seed)
	assert.Equal(t, 4, req.MLFQLevels)
	assert.True(t, req.Trace.Enabled())
	assert.Nil(t, req.Decide)
}

func TestRunOptions_Request_CustomExpression(t *testing.T) {
	tests := []struct {
		name    string
		opts    runOptions
		wantErr bool
	}{
		{"expression implies custom", runOptions{CustomExpr: "remaining"}, false},
		{"explicit custom", runOptions{Policy: "custom", CustomExpr: "remaining"}, false},
		{"expression with other policy", runOptions{Policy: "sjf", CustomExpr: "remaining"}, true},
		{"custom without expression", runOptions{Policy: "custom"}, true},
		{"bad expression", runOptions{CustomExpr: "remaining +"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, err := tc.opts.request(convoy(t))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "custom", req.Policy)
			assert.NotNil(t, req.Decide)
		})
	}
}

func TestWorkloadSource_Resolve(t *testing.T) {
	ctx := context.Background()
	presets := workload.BuiltinPresets()

	// Preset by slug
	s, err := workloadSource{Preset: "sjf-friendly"}.resolve(ctx, presets, 42)
	require.NoError(t, err)
	assert.Equal(t, "SJF friendly", s.Name)
	assert.Len(t, s.Processes, 4)

	// Random workloads are seeded
	a, err := workloadSource{Random: 6}.resolve(ctx, presets, 42)
	require.NoError(t, err)
	b, err := workloadSource{Random: 6}.resolve(ctx, presets, 42)
	require.NoError(t, err)
	assert.Len(t, a.Processes, 6)
	assert.Equal(t, a.Processes, b.Processes)

	// File
	path := writeFile(t, "w.json", `[{"pid": 1, "arrival": 0, "burst": 2}]`)
	f, err := workloadSource{URL: path}.resolve(ctx, presets, 42)
	require.NoError(t, err)
	assert.Equal(t, "w", f.Name)
}

func TestWorkloadSource_Resolve_Errors(t *testing.T) {
	ctx := context.Background()
	presets := workload.BuiltinPresets()

	_, err := workloadSource{}.resolve(ctx, presets, 1)
	assert.Error(t, err, "no source")

	_, err = workloadSource{Preset: "rr-heavy", Random: 3}.resolve(ctx, presets, 1)
	assert.Error(t, err, "two sources")

	_, err = workloadSource{Preset: "nope"}.resolve(ctx, presets, 1)
	assert.Error(t, err, "unknown preset")
}

func TestApplyScenario_FlagsWin(t *testing.T) {
	// GIVEN a command where only --quantum was set explicitly
	c := &cobra.Command{Use: "test"}
	var o runOptions
	c.Flags().StringVar(&o.Policy, "policy", "fcfs", "")
	c.Flags().Float64Var(&o.Quantum, "quantum", 2, "")
	c.Flags().Float64Var(&o.SwitchCost, "switch-cost", 0, "")
	require.NoError(t, c.Flags().Set("quantum", "5"))

	// WHEN a scenario carries its own settings
	got := applyScenario(c, o, &workload.Scenario{Policy: "rr", Quantum: 3, ContextSwitchCost: 1})

	// THEN unset flags take the file values and the explicit flag stays
	assert.Equal(t, "rr", got.Policy)
	assert.Equal(t, 5.0, got.Quantum)
	assert.Equal(t, 1.0, got.SwitchCost)
}

func simulateConvoy(t *testing.T, explain bool) *sim.Result {
	t.Helper()
	req, err := runOptions{Policy: "fcfs", Quantum: 2, Explain: explain}.request(convoy(t))
	require.NoError(t, err)
	res, err := sim.NewEngine(sim.DefaultSelectorConfig()).Simulate(req)
	require.NoError(t, err)
	return res
}

func TestRenderResult_Table(t *testing.T) {
	res := simulateConvoy(t, true)

	var buf bytes.Buffer
	require.NoError(t, renderResult(&buf, "Convoy effect", res, "table"))
	out := buf.String()

	assert.Contains(t, out, "Convoy effect: Round Robin")
	assert.Contains(t, out, "switched to Round Robin")
	assert.Contains(t, out, res.SwitchReason)
	assert.Contains(t, out, "P4")
	assert.Contains(t, out, "Avg waiting")
	assert.Contains(t, out, "Decisions")
	assert.Contains(t, out, "At time 0, process P1 runs")
}

func TestRenderResult_JSONAndYAML(t *testing.T) {
	res := simulateConvoy(t, false)

	var js bytes.Buffer
	require.NoError(t, renderResult(&js, "", res, "json"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "fcfs", decoded["chosenAlgorithm"])
	assert.Equal(t, "round_robin", decoded["usedAlgorithm"])
	assert.NotEmpty(t, decoded["ganttChart"])

	var ys bytes.Buffer
	require.NoError(t, renderResult(&ys, "", res, "yaml"))
	var y map[string]any
	require.NoError(t, yaml.Unmarshal(ys.Bytes(), &y))
	assert.Equal(t, "round_robin", y["used_policy"])
}

func TestRenderComparison_HighlightsAndLists(t *testing.T) {
	engine := sim.NewEngine(sim.DefaultSelectorConfig())
	results, err := engine.Compare(context.Background(),
		sim.Request{Processes: convoy(t), Quantum: 2}, []string{"fcfs", "sjf", "rr"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, renderComparison(&buf, "", results, "table"))
	out := buf.String()
	assert.Contains(t, out, "Policy comparison")
	assert.Contains(t, out, "FCFS")
	assert.Contains(t, out, "SJF")
	assert.Contains(t, out, "Round Robin")
}

func TestRenderPresets(t *testing.T) {
	var buf bytes.Buffer
	renderPresets(&buf, workload.BuiltinPresets())
	assert.Contains(t, buf.String(), "convoy-effect")
	assert.Contains(t, buf.String(), "Short jobs arrive first")
}

func TestRenderGantt(t *testing.T) {
	tl := sim.Timeline{
		{PID: 1, Start: 1, End: 3},
		{PID: sim.ContextSwitchPID, Start: 3, End: 4, IsContextSwitch: true},
		{PID: 2, Start: 4, End: 6},
	}
	out := renderGantt(tl)
	assert.Contains(t, out, "P1")
	assert.Contains(t, out, "CS")
	assert.Contains(t, out, "P2")
	assert.Contains(t, out, "·", "leading idle gap is drawn")
	assert.Contains(t, renderGantt(nil), "empty timeline")
}

func TestIsValidOutput(t *testing.T) {
	for _, f := range []string{"table", "json", "yaml"} {
		assert.True(t, isValidOutput(f))
	}
	assert.False(t, isValidOutput("xml"))
}

func TestDefaultComparePolicies_ExcludesCustom(t *testing.T) {
	names := defaultComparePolicies()
	assert.Len(t, names, len(sim.AllPolicies))
	assert.NotContains(t, names, "custom")
}
