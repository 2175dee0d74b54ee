// Package testutil provides shared test infrastructure for the scheduling engine.
// It holds the golden scenario dataset types and assertion helpers used by
// sim/ and its sub-packages. It must not import sim/ (sim's own tests use it).
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one hand-verified scenario: a workload, a policy and the
// exact raw timeline and metrics the engine must produce for it.
type GoldenTestCase struct {
	Name      string          `json:"name"`
	Policy    string          `json:"policy"`
	Quantum   float64         `json:"quantum"`
	Processes []GoldenProcess `json:"processes"`
	Timeline  []GoldenEntry   `json:"timeline"` // raw, markers included
	Metrics   GoldenMetrics   `json:"metrics"`
}

// GoldenProcess mirrors the process descriptor fields used by the scenarios.
type GoldenProcess struct {
	PID      int       `json:"pid"`
	Arrival  float64   `json:"arrival"`
	Burst    float64   `json:"burst"`
	Priority *int      `json:"priority,omitempty"`
	Tickets  int       `json:"tickets,omitempty"`
	Stride   float64   `json:"stride,omitempty"`
	Bursts   []float64 `json:"bursts,omitempty"`
}

// GoldenEntry is one expected timeline entry; PID -1 marks a context switch.
type GoldenEntry struct {
	PID   int     `json:"pid"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// GoldenMetrics represents the expected aggregate metrics of a scenario.
type GoldenMetrics struct {
	AvgWaitingTime    float64 `json:"avg_waiting_time"`
	AvgTurnaroundTime float64 `json:"avg_turnaround_time"`
	ContextSwitches   int     `json:"context_switches"`
	Throughput        float64 `json:"throughput"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
