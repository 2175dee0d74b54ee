package workload

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/cpusched/sim"
)

// Scenario is a workload file: the processes plus optional run settings.
// Zero values mean "not set" and leave the caller's defaults in place.
type Scenario struct {
	Name              string        `yaml:"name,omitempty" json:"name,omitempty"`
	Policy            string        `yaml:"policy,omitempty" json:"algorithm,omitempty"`
	Quantum           float64       `yaml:"quantum,omitempty" json:"timeQuantum,omitempty"`
	ContextSwitchCost float64       `yaml:"context_switch_cost,omitempty" json:"contextSwitchCost,omitempty"`
	Processes         []sim.Process `yaml:"processes" json:"processes"`
}

// Accepted spellings for each process field. Workload files come from many
// tools, so keys are matched case-insensitively against these aliases.
var processKeys = map[string][]string{
	"pid":      {"pid", "id"},
	"arrival":  {"arrivaltime", "arrival_time", "arrival", "at"},
	"burst":    {"bursttime", "burst_time", "burst", "bt"},
	"priority": {"priority", "prio"},
	"tickets":  {"tickets"},
	"stride":   {"stride"},
	"bursts":   {"bursts"},
}

var scenarioKeys = map[string][]string{
	"name":      {"name"},
	"policy":    {"algorithm", "policy"},
	"quantum":   {"timequantum", "time_quantum", "quantum"},
	"cost":      {"contextswitchduration", "contextswitchcost", "context_switch_cost"},
	"processes": {"processes"},
}

// Load reads a workload from URL, which may be a local path or any URL the
// afs service understands. The format follows the extension: .csv is parsed
// as CSV, everything else as YAML (which also accepts JSON).
func Load(ctx context.Context, URL string) (*Scenario, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("reading workload %s: %w", URL, err)
	}
	scenario, err := Parse(data, path.Ext(URL))
	if err != nil {
		return nil, fmt.Errorf("parsing workload %s: %w", URL, err)
	}
	if scenario.Name == "" {
		scenario.Name = strings.TrimSuffix(path.Base(URL), path.Ext(URL))
	}
	return scenario, nil
}

// Parse decodes a workload document. The document is either a list of
// processes or a mapping with a processes list and optional settings.
// Numeric fields are untyped: numbers and numeric strings are accepted and
// anything unusable is left at zero for sim.Normalize to coerce.
func Parse(data []byte, ext string) (*Scenario, error) {
	if strings.EqualFold(ext, ".csv") {
		return parseCSV(data)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	switch v := doc.(type) {
	case []any:
		procs, err := decodeProcesses(v)
		if err != nil {
			return nil, err
		}
		return &Scenario{Processes: procs}, nil
	case map[string]any:
		return decodeScenario(v)
	case nil:
		return nil, fmt.Errorf("empty workload document")
	default:
		return nil, fmt.Errorf("workload must be a list of processes or a mapping, got %T", doc)
	}
}

func decodeScenario(m map[string]any) (*Scenario, error) {
	fields := resolveKeys(m, scenarioKeys, "workload")
	raw, ok := fields["processes"].([]any)
	if !ok {
		return nil, fmt.Errorf("workload mapping requires a processes list")
	}
	procs, err := decodeProcesses(raw)
	if err != nil {
		return nil, err
	}
	s := &Scenario{Processes: procs}
	if v, ok := fields["name"]; ok {
		s.Name = fmt.Sprint(v)
	}
	if v, ok := fields["policy"]; ok {
		s.Policy = fmt.Sprint(v)
	}
	s.Quantum, _ = toFloat(fields["quantum"])
	s.ContextSwitchCost, _ = toFloat(fields["cost"])
	return s, nil
}

func decodeProcesses(raw []any) ([]sim.Process, error) {
	procs := make([]sim.Process, 0, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("process[%d]: expected a mapping, got %T", i, item)
		}
		procs = append(procs, decodeProcess(m, i))
	}
	return procs, nil
}

func decodeProcess(m map[string]any, idx int) sim.Process {
	fields := resolveKeys(m, processKeys, fmt.Sprintf("process[%d]", idx))
	var p sim.Process
	if pid, ok := toFloat(fields["pid"]); ok {
		p.PID = int(pid)
	}
	p.ArrivalTime, _ = toFloat(fields["arrival"])
	p.BurstTime, _ = toFloat(fields["burst"])
	if prio, ok := toFloat(fields["priority"]); ok {
		p.Priority = sim.IntPtr(int(prio))
	}
	if tickets, ok := toFloat(fields["tickets"]); ok {
		p.Tickets = int(tickets)
	}
	p.Stride, _ = toFloat(fields["stride"])
	if list, ok := fields["bursts"].([]any); ok {
		p.Bursts = make([]float64, len(list))
		for i, b := range list {
			p.Bursts[i], _ = toFloat(b)
		}
	}
	return p
}

// resolveKeys maps the document's keys onto canonical field names.
// Unrecognized keys are reported and ignored.
func resolveKeys(m map[string]any, aliases map[string][]string, where string) map[string]any {
	lookup := make(map[string]string)
	for canonical, names := range aliases {
		for _, n := range names {
			lookup[n] = canonical
		}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		canonical, ok := lookup[strings.ToLower(k)]
		if !ok {
			logrus.Warnf("%s: ignoring unknown field %q", where, k)
			continue
		}
		out[canonical] = v
	}
	return out
}

// toFloat converts a decoded scalar to float64. NaN strings are rejected so
// they cannot slip past coercion.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// parseCSV reads a header row (pid, arrival, burst, priority; pid and
// priority optional) followed by one process per row.
func parseCSV(data []byte) (*Scenario, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("csv workload needs a header and at least one row")
	}
	columns := make(map[string]int)
	for i, h := range rows[0] {
		for canonical, names := range processKeys {
			for _, n := range names {
				if strings.EqualFold(strings.TrimSpace(h), n) {
					columns[canonical] = i
				}
			}
		}
	}
	if _, ok := columns["arrival"]; !ok {
		return nil, fmt.Errorf("csv header has no arrival column")
	}
	if _, ok := columns["burst"]; !ok {
		return nil, fmt.Errorf("csv header has no burst column")
	}

	s := &Scenario{}
	for i, row := range rows[1:] {
		m := make(map[string]any, len(columns))
		for canonical, col := range columns {
			if col < len(row) && row[col] != "" {
				m[canonical] = row[col]
			}
		}
		p := decodeProcess(m, i)
		if p.PID == 0 {
			p.PID = i + 1
		}
		s.Processes = append(s.Processes, p)
	}
	return s, nil
}
