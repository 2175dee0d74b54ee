package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalSteps       int
	ContextSwitches  int
	UniqueProcesses  int
	SlicesPerProcess map[int]int // pid -> number of CPU slices
	MeanSliceLength  float64
	MaxSliceLength   float64
	MaxWaitingQueue  int // longest waiting list seen at a dispatch
	Switched         bool
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		SlicesPerProcess: make(map[int]int),
	}
	if st == nil {
		return summary
	}
	if st.Selection != nil {
		summary.Switched = st.Selection.Switched()
	}

	total := 0.0
	slices := 0
	for _, s := range st.Steps {
		summary.TotalSteps++
		if s.ContextSwitch {
			summary.ContextSwitches++
			continue
		}
		slices++
		summary.SlicesPerProcess[s.PID]++
		total += s.Duration
		if s.Duration > summary.MaxSliceLength {
			summary.MaxSliceLength = s.Duration
		}
		if len(s.Waiting) > summary.MaxWaitingQueue {
			summary.MaxWaitingQueue = len(s.Waiting)
		}
	}
	if slices > 0 {
		summary.MeanSliceLength = total / float64(slices)
	}
	summary.UniqueProcesses = len(summary.SlicesPerProcess)

	return summary
}
