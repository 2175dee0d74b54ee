package sim

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Policy identifies one scheduling discipline. The set is closed: every
// switch over Policy must handle each value.
type Policy int

const (
	FCFS Policy = iota
	SRTF
	SJF
	LJF
	LRTF
	RoundRobin
	Priority
	PriorityPreemptive
	HRRN
	Lottery
	Stride
	FCFSIO
	MLQ
	MLFQ
	Custom
)

// AllPolicies lists every built-in policy in declaration order, excluding Custom.
var AllPolicies = []Policy{
	FCFS, SRTF, SJF, LJF, LRTF, RoundRobin, Priority, PriorityPreemptive,
	HRRN, Lottery, Stride, FCFSIO, MLQ, MLFQ,
}

var policyNames = map[Policy]string{
	FCFS:               "fcfs",
	SRTF:               "srtf",
	SJF:                "sjf",
	LJF:                "ljf",
	LRTF:               "lrtf",
	RoundRobin:         "round_robin",
	Priority:           "priority",
	PriorityPreemptive: "priority_preemptive",
	HRRN:               "hrrn",
	Lottery:            "lottery",
	Stride:             "stride",
	FCFSIO:             "fcfs_io",
	MLQ:                "mlq",
	MLFQ:               "mlfq",
	Custom:             "custom",
}

// policyAliases maps accepted spellings to policies. Canonical names are added in init.
var policyAliases = map[string]Policy{
	"rr":                RoundRobin,
	"sjf_nonpreemptive": SJF,
}

var policyLabels = map[Policy]string{
	FCFS:               "FCFS",
	SRTF:               "SRTF",
	SJF:                "SJF",
	LJF:                "LJF",
	LRTF:               "LRTF",
	RoundRobin:         "Round Robin",
	Priority:           "Priority",
	PriorityPreemptive: "Priority (preemptive)",
	HRRN:               "HRRN",
	Lottery:            "Lottery",
	Stride:             "Stride",
	FCFSIO:             "FCFS + I/O",
	MLQ:                "MLQ",
	MLFQ:               "MLFQ",
	Custom:             "Custom",
}

func init() {
	for p, name := range policyNames {
		policyAliases[name] = p
	}
}

// String returns the canonical wire name (e.g. "round_robin").
func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// Label returns a human-readable name for reports.
func (p Policy) Label() string {
	if label, ok := policyLabels[p]; ok {
		return label
	}
	return p.String()
}

// UsesQuantum reports whether the policy slices CPU time by quantum.
func (p Policy) UsesQuantum() bool {
	switch p {
	case RoundRobin, Lottery, Stride, MLQ, MLFQ, Custom:
		return true
	default:
		return false
	}
}

// Preemptive reports whether the policy can take the CPU away from an
// unfinished process, and therefore emits context-switch markers.
func (p Policy) Preemptive() bool {
	switch p {
	case SRTF, LRTF, PriorityPreemptive:
		return true
	default:
		return p.UsesQuantum()
	}
}

// IsValidPolicy returns true if name is a recognized policy name or alias.
// Matching is case-insensitive.
func IsValidPolicy(name string) bool {
	_, ok := policyAliases[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// ParsePolicy resolves a policy name case-insensitively.
// Unknown or empty names normalize to FCFS.
func ParsePolicy(name string) Policy {
	key := strings.ToLower(strings.TrimSpace(name))
	if p, ok := policyAliases[key]; ok {
		return p
	}
	if key != "" {
		logrus.Warnf("unknown policy %q, defaulting to %s", name, FCFS)
	}
	return FCFS
}

// MarshalText implements encoding.TextMarshaler so Policy renders by name in JSON and YAML.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler with ParsePolicy semantics.
func (p *Policy) UnmarshalText(text []byte) error {
	*p = ParsePolicy(string(text))
	return nil
}
