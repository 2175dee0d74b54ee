package workload

import (
	"strings"

	"github.com/inference-sim/cpusched/sim"
)

// Preset is a named, ready-to-run workload.
type Preset struct {
	Name        string        `yaml:"name" json:"name"`
	Description string        `yaml:"description" json:"description"`
	Processes   []sim.Process `yaml:"processes" json:"processes"`
}

// Slug returns the preset's command-line name, e.g. "convoy-effect".
func (p Preset) Slug() string {
	return slugify(p.Name)
}

// BuiltinPresets returns the presets compiled into the binary. A fresh slice
// is returned on every call.
func BuiltinPresets() []Preset {
	return []Preset{
		{
			Name:        "Convoy effect",
			Description: "One long job first, then short",
			Processes: []sim.Process{
				{PID: 1, ArrivalTime: 0, BurstTime: 8, Priority: sim.IntPtr(1)},
				{PID: 2, ArrivalTime: 1, BurstTime: 1, Priority: sim.IntPtr(1)},
				{PID: 3, ArrivalTime: 2, BurstTime: 1, Priority: sim.IntPtr(1)},
				{PID: 4, ArrivalTime: 3, BurstTime: 1, Priority: sim.IntPtr(1)},
			},
		},
		{
			Name:        "RR heavy",
			Description: "Similar bursts, many context switches",
			Processes: []sim.Process{
				{PID: 1, ArrivalTime: 0, BurstTime: 4, Priority: sim.IntPtr(1)},
				{PID: 2, ArrivalTime: 0, BurstTime: 4, Priority: sim.IntPtr(1)},
				{PID: 3, ArrivalTime: 0, BurstTime: 4, Priority: sim.IntPtr(1)},
				{PID: 4, ArrivalTime: 0, BurstTime: 4, Priority: sim.IntPtr(1)},
			},
		},
		{
			Name:        "SJF friendly",
			Description: "Short jobs arrive first",
			Processes: []sim.Process{
				{PID: 1, ArrivalTime: 0, BurstTime: 1, Priority: sim.IntPtr(1)},
				{PID: 2, ArrivalTime: 1, BurstTime: 2, Priority: sim.IntPtr(1)},
				{PID: 3, ArrivalTime: 2, BurstTime: 4, Priority: sim.IntPtr(1)},
				{PID: 4, ArrivalTime: 3, BurstTime: 8, Priority: sim.IntPtr(1)},
			},
		},
		{
			Name:        "Priority demo",
			Description: "Different priorities",
			Processes: []sim.Process{
				{PID: 1, ArrivalTime: 0, BurstTime: 4, Priority: sim.IntPtr(2)},
				{PID: 2, ArrivalTime: 0, BurstTime: 2, Priority: sim.IntPtr(1)},
				{PID: 3, ArrivalTime: 0, BurstTime: 3, Priority: sim.IntPtr(3)},
				{PID: 4, ArrivalTime: 1, BurstTime: 1, Priority: sim.IntPtr(1)},
			},
		},
	}
}

// MergePresets returns base with overrides applied: an override replaces the
// base preset with the same slug, new ones are appended in order.
func MergePresets(base, overrides []Preset) []Preset {
	out := make([]Preset, len(base))
	copy(out, base)
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.Slug()] = i
	}
	for _, p := range overrides {
		if i, ok := index[p.Slug()]; ok {
			out[i] = p
			continue
		}
		index[p.Slug()] = len(out)
		out = append(out, p)
	}
	return out
}

// FindPreset looks a preset up by name or slug, case-insensitively.
func FindPreset(presets []Preset, name string) (Preset, bool) {
	want := slugify(name)
	for _, p := range presets {
		if p.Slug() == want {
			return p, true
		}
	}
	return Preset{}, false
}

func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(s)
}
