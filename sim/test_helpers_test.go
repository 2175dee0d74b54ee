package sim

import (
	"math"
	"sort"
	"testing"

	"github.com/inference-sim/cpusched/sim/internal/testutil"
)

// threeProcessWorkload is the small mixed-arrival workload used by several
// scenario tests: P1 (0, 4), P2 (1, 3), P3 (2, 1).
func threeProcessWorkload() []Process {
	return []Process{
		{PID: 1, ArrivalTime: 0, BurstTime: 4},
		{PID: 2, ArrivalTime: 1, BurstTime: 3},
		{PID: 3, ArrivalTime: 2, BurstTime: 1},
	}
}

// equalBurstWorkload returns n processes arriving at 0 with the same burst.
func equalBurstWorkload(n int, burst float64) []Process {
	procs := make([]Process, n)
	for i := range procs {
		procs[i] = Process{PID: i + 1, BurstTime: burst}
	}
	return procs
}

// convoyWorkload has one long job at the head of three short ones.
func convoyWorkload() []Process {
	return []Process{
		{PID: 1, ArrivalTime: 0, BurstTime: 30},
		{PID: 2, ArrivalTime: 0, BurstTime: 1},
		{PID: 3, ArrivalTime: 0, BurstTime: 1},
		{PID: 4, ArrivalTime: 0, BurstTime: 1},
	}
}

// mixedWorkload exercises idle gaps, fractional times, priorities, weights
// and multi-phase bursts at once.
func mixedWorkload() []Process {
	return []Process{
		{PID: 1, ArrivalTime: 0, BurstTime: 5, Priority: IntPtr(2), Tickets: 3, Stride: 300},
		{PID: 2, ArrivalTime: 1.5, BurstTime: 2.5, Priority: IntPtr(0), Tickets: 1, Stride: 900},
		{PID: 3, ArrivalTime: 2, BurstTime: 1, Priority: IntPtr(1)},
		{PID: 4, ArrivalTime: 20, BurstTime: 3, Bursts: []float64{1, 2, 2}},
		{PID: 5, ArrivalTime: 21, BurstTime: 7, Priority: IntPtr(3), Tickets: 5},
		{PID: 6, ArrivalTime: 21, BurstTime: 0.5},
	}
}

// pids returns the pid of every entry, -1 for markers.
func pids(t Timeline) []int {
	out := make([]int, len(t))
	for i, e := range t {
		out[i] = e.PID
	}
	return out
}

func goldenProcesses(gps []testutil.GoldenProcess) []Process {
	procs := make([]Process, len(gps))
	for i, gp := range gps {
		procs[i] = Process{
			PID:         gp.PID,
			ArrivalTime: gp.Arrival,
			BurstTime:   gp.Burst,
			Priority:    gp.Priority,
			Tickets:     gp.Tickets,
			Stride:      gp.Stride,
			Bursts:      gp.Bursts,
		}
	}
	return procs
}

// assertNoOverlap fails if two real entries share CPU time.
func assertNoOverlap(t *testing.T, tl Timeline) {
	t.Helper()
	real := StripContextSwitches(tl)
	sorted := make(Timeline, len(real))
	copy(sorted, real)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].End-1e-9 {
			t.Errorf("overlap: %v and %v", sorted[i-1], sorted[i])
		}
	}
}

// assertWaitingIdentity checks Σwait + Σburst == Σturnaround and wait >= 0.
func assertWaitingIdentity(t *testing.T, results []ProcessResult) {
	t.Helper()
	var wait, burst, tat float64
	for _, r := range results {
		if r.WaitingTime < 0 {
			t.Errorf("P%d: negative waiting time %v", r.PID, r.WaitingTime)
		}
		wait += r.WaitingTime
		burst += r.BurstTime
		tat += r.TurnaroundTime
	}
	if math.Abs(wait+burst-tat) > 1e-6 {
		t.Errorf("Σwait + Σburst = %v, Σturnaround = %v", wait+burst, tat)
	}
}
