// Derives per-process results and aggregate performance metrics from a
// finished timeline.

package sim

// ProcessResult echoes a process descriptor with its derived timings.
type ProcessResult struct {
	PID            int     `json:"pid" yaml:"pid"`
	ArrivalTime    float64 `json:"arrivalTime" yaml:"arrival_time"`
	BurstTime      float64 `json:"burstTime" yaml:"burst_time"` // total CPU demand
	Priority       *int    `json:"priority,omitempty" yaml:"priority,omitempty"`
	CompletionTime float64 `json:"completionTime" yaml:"completion_time"` // end of the last CPU entry
	TurnaroundTime float64 `json:"turnaroundTime" yaml:"turnaround_time"` // completion - arrival
	WaitingTime    float64 `json:"waitingTime" yaml:"waiting_time"`       // max(0, turnaround - burst)
	ResponseTime   float64 `json:"responseTime" yaml:"response_time"`     // first CPU start - arrival
}

// Metrics aggregates a simulation for reporting. Every float is rounded to
// two decimal places.
type Metrics struct {
	AvgWaitingTime    float64 `json:"avgWaitingTime" yaml:"avg_waiting_time"`
	AvgTurnaroundTime float64 `json:"avgTurnaroundTime" yaml:"avg_turnaround_time"`
	AvgResponseTime   float64 `json:"avgResponseTime" yaml:"avg_response_time"`
	ContextSwitches   int     `json:"contextSwitches" yaml:"context_switches"`
	Throughput        float64 `json:"throughput" yaml:"throughput"`           // processes per unit time
	TotalTime         float64 `json:"totalTime" yaml:"total_time"`            // timeline end, switch blocks included
	CPUUtilization    float64 `json:"cpuUtilization" yaml:"cpu_utilization"` // busy / total, 0..1
}

// ComputeMetrics derives one ProcessResult per descriptor, in input order,
// plus the aggregate Metrics and the number of context-switch entries.
// A process that never appears in the timeline completes at 0.
func ComputeMetrics(timeline Timeline, processes []Process) ([]ProcessResult, Metrics, int) {
	completion := make(map[int]float64, len(processes))
	firstStart := make(map[int]float64, len(processes))
	switches := 0
	for _, e := range timeline {
		if e.IsContextSwitch {
			switches++
			continue
		}
		if e.End > completion[e.PID] {
			completion[e.PID] = e.End
		}
		if start, ok := firstStart[e.PID]; !ok || e.Start < start {
			firstStart[e.PID] = e.Start
		}
	}

	results := make([]ProcessResult, len(processes))
	waits := make([]float64, len(processes))
	turnarounds := make([]float64, len(processes))
	responses := make([]float64, len(processes))
	maxCompletion := 0.0
	for i, p := range processes {
		burst := p.TotalBurst()
		done := completion[p.PID]
		tat := done - p.ArrivalTime
		wait := tat - burst
		if wait < 0 {
			wait = 0
		}
		response := 0.0
		if start, ok := firstStart[p.PID]; ok && start > p.ArrivalTime {
			response = start - p.ArrivalTime
		}
		results[i] = ProcessResult{
			PID:            p.PID,
			ArrivalTime:    p.ArrivalTime,
			BurstTime:      burst,
			Priority:       p.Priority,
			CompletionTime: done,
			TurnaroundTime: tat,
			WaitingTime:    wait,
			ResponseTime:   response,
		}
		waits[i], turnarounds[i], responses[i] = wait, tat, response
		if done > maxCompletion {
			maxCompletion = done
		}
	}

	m := Metrics{ContextSwitches: switches}
	if len(processes) > 0 && maxCompletion > 0 {
		m.AvgWaitingTime = RoundTo2(CalculateMean(waits))
		m.AvgTurnaroundTime = RoundTo2(CalculateMean(turnarounds))
		m.AvgResponseTime = RoundTo2(CalculateMean(responses))
		m.Throughput = RoundTo2(float64(len(processes)) / maxCompletion)
	}
	m.TotalTime = RoundTo2(timeline.End())
	if total := timeline.End(); total > 0 {
		m.CPUUtilization = RoundTo2(timeline.BusyTime() / total)
	}
	return results, m, switches
}
