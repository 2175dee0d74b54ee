// Explains a finished timeline one entry at a time, for --explain output
// and the decision trace.

package sim

import (
	"fmt"
	"strconv"

	"github.com/inference-sim/cpusched/sim/trace"
)

// Narrate builds a decision trace for timeline as produced by policy.
// Returns nil when cfg does not enable tracing.
func Narrate(policy Policy, timeline Timeline, processes []Process, cfg trace.TraceConfig) *trace.SimulationTrace {
	if !cfg.Enabled() {
		return nil
	}
	st := trace.NewSimulationTrace(cfg, policy.String())
	byPID := make(map[int]Process, len(processes))
	for _, p := range processes {
		byPID[p.PID] = p
	}
	executed := make(map[int]float64, len(processes))

	for _, e := range timeline {
		if e.IsContextSwitch {
			st.RecordStep(trace.StepRecord{
				Time: e.Start, PID: e.PID, Duration: e.Duration(), ContextSwitch: true,
				Reason:    "context switch",
				Narration: narrate(cfg, e, "context switch"),
			})
			continue
		}
		p := byPID[e.PID]
		remaining := p.TotalBurst() - executed[e.PID]
		waiting := waitingAt(e.Start, e.PID, processes, executed)
		reason := stepReason(policy, p, e.Start, remaining, len(waiting))
		st.RecordStep(trace.StepRecord{
			Time:      e.Start,
			PID:       e.PID,
			Duration:  e.Duration(),
			Remaining: remaining,
			Waiting:   waiting,
			Reason:    reason,
			Narration: narrate(cfg, e, reason),
		})
		executed[e.PID] += e.Duration()
	}
	return st
}

// waitingAt lists the pids other than running that have arrived by t and
// still have CPU work, in input order.
func waitingAt(t float64, running int, processes []Process, executed map[int]float64) []int {
	var out []int
	for _, p := range processes {
		if p.PID == running || p.ArrivalTime > t {
			continue
		}
		if p.TotalBurst()-executed[p.PID] > timeEpsilon {
			out = append(out, p.PID)
		}
	}
	return out
}

// stepReason gives the one-line justification for running p at t.
func stepReason(policy Policy, p Process, t, remaining float64, waiting int) string {
	switch policy {
	case FCFS:
		return "earliest arrival among ready processes"
	case SJF:
		return fmt.Sprintf("shortest total burst (%s) among ready processes; runs to completion", fmtTime(p.TotalBurst()))
	case LJF:
		return fmt.Sprintf("longest total burst (%s) among ready processes; runs to completion", fmtTime(p.TotalBurst()))
	case SRTF:
		return fmt.Sprintf("shortest remaining time (%s) among ready processes", fmtTime(remaining))
	case LRTF:
		return fmt.Sprintf("longest remaining time (%s) among ready processes", fmtTime(remaining))
	case HRRN:
		ratio := (t - p.ArrivalTime + remaining) / remaining
		return fmt.Sprintf("highest response ratio (%.2f) among ready processes", ratio)
	case RoundRobin:
		if waiting == 0 {
			return "only ready process"
		}
		return "next in the round-robin queue"
	case Priority, PriorityPreemptive:
		return fmt.Sprintf("most urgent priority (%d) among ready processes", p.PriorityOrDefault())
	case Lottery:
		return fmt.Sprintf("drew the winning ticket (%d of its own)", p.TicketsOrDefault())
	case Stride:
		return "smallest pass value among ready processes"
	case FCFSIO:
		return "ready the longest and not blocked on I/O"
	case MLQ:
		return fmt.Sprintf("head of the most urgent non-empty queue (level %d)", p.PriorityOrDefault())
	case MLFQ:
		return "head of the highest non-empty feedback queue; demoted if it uses the full quantum"
	case Custom:
		return "chosen by the custom decision function"
	default:
		return "selected by the scheduler"
	}
}

func narrate(cfg trace.TraceConfig, e TimelineEntry, reason string) string {
	if !cfg.Narrative {
		return ""
	}
	if e.IsContextSwitch {
		return fmt.Sprintf("At time %s, context switch.", fmtTime(e.Start))
	}
	return fmt.Sprintf("At time %s, process P%d runs: %s.", fmtTime(e.Start), e.PID, reason)
}

// fmtTime renders a time without trailing zeros.
func fmtTime(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
