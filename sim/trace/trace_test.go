package trace

import (
	"testing"
)

func TestSimulationTrace_RecordStep_AssignsIndex(t *testing.T) {
	// GIVEN a trace configured for steps
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps}, "fcfs")

	// WHEN two step records are recorded
	st.RecordStep(StepRecord{Time: 0, PID: 1, Duration: 4, Reason: "first"})
	st.RecordStep(StepRecord{Time: 4, PID: 2, Duration: 3, Reason: "second"})

	// THEN both are kept in order with sequential indices
	if len(st.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(st.Steps))
	}
	for i, s := range st.Steps {
		if s.Index != i {
			t.Errorf("step %d: expected index %d, got %d", i, i, s.Index)
		}
	}
	if st.Steps[1].PID != 2 {
		t.Errorf("expected second step for P2, got P%d", st.Steps[1].PID)
	}
}

func TestSimulationTrace_RecordSelection_StoresCopy(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelSteps}, "fcfs")

	st.RecordSelection(SelectionRecord{Requested: "fcfs", Used: "round_robin", Reason: "convoy"})

	if st.Selection == nil {
		t.Fatal("expected selection record")
	}
	if !st.Selection.Switched() {
		t.Error("expected Switched() for differing policies")
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"none", true},
		{"steps", true},
		{"", true},
		{"decisions", false},
		{"STEPS", false},
	}
	for _, tt := range tests {
		if got := IsValidTraceLevel(tt.level); got != tt.want {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestTraceConfig_Enabled(t *testing.T) {
	if (TraceConfig{Level: TraceLevelNone}).Enabled() {
		t.Error("none level must be disabled")
	}
	if (TraceConfig{}).Enabled() {
		t.Error("empty level must be disabled")
	}
	if !(TraceConfig{Level: TraceLevelSteps}).Enabled() {
		t.Error("steps level must be enabled")
	}
}
