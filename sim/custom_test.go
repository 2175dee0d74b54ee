package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertAllComplete(t *testing.T, tl Timeline, procs []Process) {
	t.Helper()
	busy := tl.BusyTimeByPID()
	for _, p := range procs {
		assert.InDelta(t, p.TotalBurst(), busy[p.PID], 1e-9, "P%d did not receive its full burst", p.PID)
	}
}

func TestRunCustom_AlwaysErroring_FallsBackAndCompletes(t *testing.T) {
	// GIVEN a decision function that always fails
	failing := func(DecisionState) (int, error) { return 0, errors.New("boom") }
	procs := threeProcessWorkload()

	// WHEN the custom runner executes it
	res, err := RunCustom(procs, failing, 2, 0)

	// THEN the simulation completes with every process finished
	require.NoError(t, err)
	assertAllComplete(t, res.Timeline, procs)
	// AND every slice was a fallback
	assert.Equal(t, len(res.Timeline), res.CustomFallbacks)
	assert.Equal(t, Custom, res.UsedPolicy)
}

func TestRunCustom_PanickingCallback_Recovered(t *testing.T) {
	panicking := func(DecisionState) (int, error) { panic("user code exploded") }
	procs := mixedWorkload()

	res, err := RunCustom(procs, panicking, 1, 0)

	require.NoError(t, err)
	assertAllComplete(t, res.Timeline, procs)
	assert.Positive(t, res.CustomFallbacks)
}

func TestRunCustom_NilCallbackAndUnknownPID_FallBack(t *testing.T) {
	procs := equalBurstWorkload(3, 2)
	for name, decide := range map[string]DecisionFunc{
		"nil":         nil,
		"unknown pid": func(DecisionState) (int, error) { return 42, nil },
	} {
		t.Run(name, func(t *testing.T) {
			res, err := RunCustom(procs, decide, 2, 0)
			require.NoError(t, err)
			// First ready process each time: plain arrival order
			assert.Equal(t, "[P1:0-2 P2:2-4 P3:4-6]", res.Timeline.String())
			assert.Equal(t, 3, res.CustomFallbacks)
		})
	}
}

func TestRunCustom_WellBehavedCallback_IsHonored(t *testing.T) {
	// GIVEN a callback that always picks the last ready process
	last := func(s DecisionState) (int, error) { return s.Ready[len(s.Ready)-1].PID, nil }
	procs := equalBurstWorkload(3, 2)

	// WHEN run
	res, err := RunCustom(procs, last, 2, 0)
	require.NoError(t, err)

	// THEN its choices are followed and no fallback is counted
	assert.Equal(t, "[P3:0-2 P2:2-4 P1:4-6]", res.Timeline.String())
	assert.Zero(t, res.CustomFallbacks)
}

func TestRunCustom_StateIsACopy(t *testing.T) {
	// GIVEN a callback that vandalizes its state
	vandal := func(s DecisionState) (int, error) {
		pid := s.Ready[0].PID
		for i := range s.Ready {
			s.Ready[i].Remaining = -100
			s.Ready[i].PID = 999
		}
		return pid, nil
	}
	procs := equalBurstWorkload(2, 3)

	// WHEN run
	res, err := RunCustom(procs, vandal, 1, 0)

	// THEN the engine is unaffected
	require.NoError(t, err)
	assertAllComplete(t, res.Timeline, procs)
	assert.Zero(t, res.CustomFallbacks)
}

func TestRunCustom_DecisionStateContents(t *testing.T) {
	var states []DecisionState
	record := func(s DecisionState) (int, error) {
		states = append(states, s)
		return s.Ready[0].PID, nil
	}
	procs := []Process{
		{PID: 7, ArrivalTime: 0, BurstTime: 3, Priority: IntPtr(2)},
		{PID: 8, ArrivalTime: 1, BurstTime: 1},
	}

	_, err := RunCustom(procs, record, 2, 0)
	require.NoError(t, err)

	require.NotEmpty(t, states)
	assert.Equal(t, DecisionState{Time: 0, Ready: []ReadyProcess{{PID: 7, Remaining: 3, Arrival: 0, Burst: 3, Priority: 2}}}, states[0])
	assert.Equal(t, 2.0, states[1].Time)
	assert.Len(t, states[1].Ready, 2)
	assert.Equal(t, 1.0, states[1].Ready[0].Remaining)
}

func TestCustom_StepCeiling_DrainsRemainingWork(t *testing.T) {
	// GIVEN a step ceiling far below what the workload needs
	calls := 0
	decide := func(s DecisionState) (int, error) {
		calls++
		return s.Ready[len(s.Ready)-1].PID, nil
	}
	procs := equalBurstWorkload(3, 4)

	// WHEN scheduled through the Custom policy
	tl, err := Schedule(Custom, procs, ScheduleConfig{Quantum: 1, Decide: decide, MaxSteps: 2})
	require.NoError(t, err)

	// THEN the callback is consulted only up to the ceiling and all work completes
	assert.Equal(t, 2, calls)
	assertAllComplete(t, tl, procs)
}

func TestDefaultMaxSteps(t *testing.T) {
	procs := []Process{{PID: 1, BurstTime: 5}, {PID: 2, BurstTime: 2}}
	// ceil(5/2) + ceil(2/2) = 4 slices
	assert.Equal(t, 2*4+64, DefaultMaxSteps(procs, 2))
	// Non-positive quantum uses the default of 2
	assert.Equal(t, 2*4+64, DefaultMaxSteps(procs, 0))
}
