package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeMetrics_FCFSScenario(t *testing.T) {
	// GIVEN the FCFS timeline of the three-process workload
	procs := threeProcessWorkload()
	tl := Timeline{
		{PID: 1, Start: 0, End: 4},
		{PID: 2, Start: 4, End: 7},
		{PID: 3, Start: 7, End: 8},
	}

	// WHEN metrics are computed
	results, m, switches := ComputeMetrics(tl, procs)

	// THEN per-process figures follow completion - arrival - burst
	require.Len(t, results, 3)
	assert.Equal(t, ProcessResult{PID: 2, ArrivalTime: 1, BurstTime: 3, CompletionTime: 7, TurnaroundTime: 6, WaitingTime: 3, ResponseTime: 3}, results[1])
	// AND aggregates are rounded to two decimals
	assert.Equal(t, 2.67, m.AvgWaitingTime)
	assert.Equal(t, 5.33, m.AvgTurnaroundTime)
	assert.Equal(t, 2.67, m.AvgResponseTime)
	assert.Equal(t, 0.38, m.Throughput)
	assert.Equal(t, 8.0, m.TotalTime)
	assert.Equal(t, 1.0, m.CPUUtilization)
	assert.Zero(t, switches)
}

func TestComputeMetrics_CountsMarkersAndIgnoresTheirPID(t *testing.T) {
	// GIVEN a timeline with two expanded switch blocks
	procs := []Process{{PID: 1, BurstTime: 2}, {PID: 2, BurstTime: 2}}
	tl := Timeline{
		{PID: 1, Start: 0, End: 1},
		{PID: ContextSwitchPID, Start: 1, End: 2, IsContextSwitch: true},
		{PID: 2, Start: 2, End: 4},
		{PID: ContextSwitchPID, Start: 4, End: 5, IsContextSwitch: true},
		{PID: 1, Start: 5, End: 6},
	}

	results, m, switches := ComputeMetrics(tl, procs)

	// THEN both markers count and completion uses only real entries
	assert.Equal(t, 2, switches)
	assert.Equal(t, 2, m.ContextSwitches)
	assert.Equal(t, 6.0, results[0].CompletionTime)
	assert.Equal(t, 4.0, results[1].CompletionTime)
	// AND utilization excludes switch time
	assert.Equal(t, 0.67, m.CPUUtilization)
}

func TestComputeMetrics_ResponseTimeUsesFirstSlice(t *testing.T) {
	procs := []Process{{PID: 1, ArrivalTime: 1, BurstTime: 3}}
	tl := Timeline{{PID: 1, Start: 2, End: 3}, {PID: 1, Start: 5, End: 7}}

	results, _, _ := ComputeMetrics(tl, procs)

	assert.Equal(t, 1.0, results[0].ResponseTime)
	assert.Equal(t, 7.0, results[0].CompletionTime)
	assert.Equal(t, 3.0, results[0].WaitingTime)
}

func TestComputeMetrics_ProcessNeverRan_CompletesAtZero(t *testing.T) {
	// GIVEN a process missing from the timeline
	procs := []Process{{PID: 1, ArrivalTime: 2, BurstTime: 1}}

	// WHEN metrics are computed on an empty timeline
	results, m, _ := ComputeMetrics(nil, procs)

	// THEN completion is 0, waiting is floored at 0 and aggregates stay 0
	assert.Equal(t, 0.0, results[0].CompletionTime)
	assert.Equal(t, 0.0, results[0].WaitingTime)
	assert.Equal(t, Metrics{}, m)
}

func TestComputeMetrics_EmptyWorkload_ZeroMetrics(t *testing.T) {
	results, m, switches := ComputeMetrics(nil, nil)
	assert.Empty(t, results)
	assert.Equal(t, Metrics{}, m)
	assert.Zero(t, switches)
}

func TestRoundTo2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{2.666666, 2.67},
		{0.375, 0.38},
		{5.333333, 5.33},
		{3, 3},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundTo2(tt.in), "RoundTo2(%v)", tt.in)
	}
}

func TestMaxSlowdown_FirstEncounteredOnTie(t *testing.T) {
	results := []ProcessResult{
		{PID: 1, BurstTime: 2, TurnaroundTime: 4},
		{PID: 2, BurstTime: 1, TurnaroundTime: 2},
		{PID: 3, BurstTime: 1, TurnaroundTime: 1},
	}
	worst, ok := MaxSlowdown(results)
	require.True(t, ok)
	assert.Equal(t, 1, worst.PID)

	_, ok = MaxSlowdown(nil)
	assert.False(t, ok)
}

func TestCalculateMean(t *testing.T) {
	assert.Equal(t, 0.0, CalculateMean([]float64{}))
	assert.Equal(t, 2.0, CalculateMean([]int{1, 2, 3}))
}
