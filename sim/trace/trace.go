package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps records one StepRecord per timeline entry.
	TraceLevelSteps TraceLevel = "steps"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level     TraceLevel
	Narrative bool // also render a full sentence per step
}

// Enabled reports whether steps should be recorded.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelSteps
}

// SimulationTrace collects decision records for one simulation.
type SimulationTrace struct {
	Config    TraceConfig      `json:"-" yaml:"-"`
	Policy    string           `json:"policy" yaml:"policy"`
	Selection *SelectionRecord `json:"selection,omitempty" yaml:"selection,omitempty"`
	Steps     []StepRecord     `json:"steps" yaml:"steps"`
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig, policy string) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Policy: policy,
		Steps:  make([]StepRecord, 0),
	}
}

// RecordStep appends a step record, assigning its index.
func (st *SimulationTrace) RecordStep(record StepRecord) {
	record.Index = len(st.Steps)
	st.Steps = append(st.Steps, record)
}

// RecordSelection stores the selector decision.
func (st *SimulationTrace) RecordSelection(record SelectionRecord) {
	st.Selection = &record
}
