package sim

import (
	"fmt"
	"strings"
)

// ContextSwitchPID is the reserved pid carried by context-switch markers.
const ContextSwitchPID = -1

// TimelineEntry is one contiguous CPU occupancy record.
// Markers (IsContextSwitch) have zero length until InjectContextSwitchCost
// expands them.
type TimelineEntry struct {
	PID             int     `json:"pid" yaml:"pid"`
	Start           float64 `json:"start" yaml:"start"`
	End             float64 `json:"end" yaml:"end"`
	IsContextSwitch bool    `json:"isContextSwitch,omitempty" yaml:"is_context_switch,omitempty"`
}

// Duration returns End - Start.
func (e TimelineEntry) Duration() float64 {
	return e.End - e.Start
}

func (e TimelineEntry) String() string {
	if e.IsContextSwitch {
		return fmt.Sprintf("CS:%v-%v", e.Start, e.End)
	}
	return fmt.Sprintf("P%d:%v-%v", e.PID, e.Start, e.End)
}

// Timeline is an ordered sequence of entries in non-decreasing Start order.
type Timeline []TimelineEntry

func (t Timeline) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, e := range t {
		sb.WriteString(e.String())
		if i < len(t)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}

// BusyTime sums the duration of all real-process entries.
func (t Timeline) BusyTime() float64 {
	busy := 0.0
	for _, e := range t {
		if !e.IsContextSwitch {
			busy += e.Duration()
		}
	}
	return busy
}

// BusyTimeByPID sums executed time per real pid.
func (t Timeline) BusyTimeByPID() map[int]float64 {
	out := make(map[int]float64)
	for _, e := range t {
		if !e.IsContextSwitch {
			out[e.PID] += e.Duration()
		}
	}
	return out
}

// End returns the latest End over all entries, or 0 for an empty timeline.
func (t Timeline) End() float64 {
	end := 0.0
	for _, e := range t {
		if e.End > end {
			end = e.End
		}
	}
	return end
}

// CountContextSwitches returns the number of marker entries.
func (t Timeline) CountContextSwitches() int {
	n := 0
	for _, e := range t {
		if e.IsContextSwitch {
			n++
		}
	}
	return n
}

// StripContextSwitches returns a copy of t without marker entries.
func StripContextSwitches(t Timeline) Timeline {
	out := make(Timeline, 0, len(t))
	for _, e := range t {
		if !e.IsContextSwitch {
			out = append(out, e)
		}
	}
	return out
}
