package sim

// InjectContextSwitchCost expands every context-switch marker into a block of
// length cost and shifts every later entry right by the accumulated cost.
// Real entries keep their duration, so per-process busy time is unchanged.
// A cost <= 0 returns the input unchanged. The input is never modified.
func InjectContextSwitchCost(timeline Timeline, cost float64) Timeline {
	if !(cost > 0) {
		return timeline
	}
	out := make(Timeline, 0, len(timeline))
	shift := 0.0
	for _, e := range timeline {
		start := e.Start + shift
		if e.IsContextSwitch {
			out = append(out, TimelineEntry{
				PID: ContextSwitchPID, Start: start, End: start + cost, IsContextSwitch: true,
			})
			shift += cost
			continue
		}
		out = append(out, TimelineEntry{PID: e.PID, Start: start, End: start + e.Duration()})
	}
	return out
}
