// Package trace provides step-by-step decision recording for scheduling runs.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// StepRecord captures one timeline entry together with why it was chosen.
type StepRecord struct {
	Index         int     `json:"index" yaml:"index"`
	Time          float64 `json:"time" yaml:"time"`
	PID           int     `json:"pid" yaml:"pid"`
	Duration      float64 `json:"duration" yaml:"duration"`
	Remaining     float64 `json:"remaining" yaml:"remaining"` // CPU left for PID when the slice started
	ContextSwitch bool    `json:"contextSwitch,omitempty" yaml:"context_switch,omitempty"`
	Waiting       []int   `json:"waiting,omitempty" yaml:"waiting,omitempty"` // other unfinished, arrived pids
	Reason        string  `json:"reason" yaml:"reason"`
	Narration     string  `json:"narration,omitempty" yaml:"narration,omitempty"`
}

// SelectionRecord captures the policy selector's decision for a run.
type SelectionRecord struct {
	Requested string `json:"requested" yaml:"requested"`
	Used      string `json:"used" yaml:"used"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Switched reports whether the used policy differs from the requested one.
func (r SelectionRecord) Switched() bool {
	return r.Requested != r.Used
}
