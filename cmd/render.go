package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/cpusched/sim"
	"github.com/inference-sim/cpusched/sim/workload"
)

const ganttWidth = 72

var (
	colorPrimary   = lipgloss.Color("#7C3AED") // Purple
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorWarning   = lipgloss.Color("#F59E0B") // Amber
	colorSuccess   = lipgloss.Color("#10B981") // Green
	colorTextMuted = lipgloss.Color("#9CA3AF") // Medium gray

	titleStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(colorSecondary).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorTextMuted)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	bestStyle    = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	cellStyle    = lipgloss.NewStyle().PaddingRight(2)

	// Process blocks cycle through these colors; switch blocks are muted.
	blockColors = []lipgloss.Color{"#7C3AED", "#06B6D4", "#F59E0B", "#10B981", "#3B82F6", "#EF4444"}
)

func isValidOutput(format string) bool {
	switch format {
	case "table", "json", "yaml":
		return true
	}
	return false
}

// renderResult writes one simulation result in the requested format.
func renderResult(w io.Writer, name string, res *sim.Result, format string) error {
	switch format {
	case "json":
		return writeJSON(w, res)
	case "yaml":
		return writeYAML(w, res)
	}

	var b strings.Builder
	title := res.UsedPolicy.Label()
	if name != "" {
		title = fmt.Sprintf("%s: %s", name, title)
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	if res.Switched() {
		b.WriteString(warningStyle.Render(fmt.Sprintf("Requested %s; switched to %s.", res.RequestedPolicy.Label(), res.UsedPolicy.Label())) + "\n")
		b.WriteString(mutedStyle.Render(res.SwitchReason) + "\n")
	}
	b.WriteString("\n" + renderGantt(res.Timeline) + "\n\n")

	rows := [][]string{{"PID", "Arrival", "Burst", "Priority", "Completion", "Turnaround", "Waiting", "Response"}}
	for _, p := range res.Processes {
		prio := "-"
		if p.Priority != nil {
			prio = strconv.Itoa(*p.Priority)
		}
		rows = append(rows, []string{
			fmt.Sprintf("P%d", p.PID), num(p.ArrivalTime), num(p.BurstTime), prio,
			num(p.CompletionTime), num(p.TurnaroundTime), num(p.WaitingTime), num(p.ResponseTime),
		})
	}
	b.WriteString(renderTable(rows, -1) + "\n\n")

	m := res.Metrics
	summary := [][]string{
		{"Avg waiting", fmt.Sprintf("%.2f", m.AvgWaitingTime)},
		{"Avg turnaround", fmt.Sprintf("%.2f", m.AvgTurnaroundTime)},
		{"Avg response", fmt.Sprintf("%.2f", m.AvgResponseTime)},
		{"Context switches", strconv.Itoa(m.ContextSwitches)},
		{"Throughput", fmt.Sprintf("%.2f", m.Throughput)},
		{"CPU utilization", fmt.Sprintf("%.0f%%", m.CPUUtilization*100)},
	}
	if res.Quantum > 0 {
		summary = append(summary, []string{"Quantum", num(res.Quantum)})
	}
	if res.CustomFallbacks > 0 {
		summary = append(summary, []string{"Custom fallbacks", strconv.Itoa(res.CustomFallbacks)})
	}
	for _, row := range summary {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left,
			headerStyle.Width(18).Render(row[0]+":"),
			row[1],
		) + "\n")
	}

	if res.Trace != nil {
		b.WriteString("\n" + headerStyle.Render("Decisions") + "\n")
		for _, s := range res.Trace.Steps {
			b.WriteString(s.Narration + "\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// renderComparison writes several results side by side. The lowest average
// waiting time is highlighted.
func renderComparison(w io.Writer, name string, results []*sim.Result, format string) error {
	switch format {
	case "json":
		return writeJSON(w, results)
	case "yaml":
		return writeYAML(w, results)
	}

	best := -1
	for i, r := range results {
		if best < 0 || r.Metrics.AvgWaitingTime < results[best].Metrics.AvgWaitingTime {
			best = i
		}
	}
	rows := [][]string{{"Requested", "Used", "Avg wait", "Avg TAT", "Avg resp", "Switches", "Throughput", "Util"}}
	for _, r := range results {
		used := r.UsedPolicy.Label()
		if !r.Switched() {
			used = "-"
		}
		rows = append(rows, []string{
			r.RequestedPolicy.Label(), used,
			fmt.Sprintf("%.2f", r.Metrics.AvgWaitingTime),
			fmt.Sprintf("%.2f", r.Metrics.AvgTurnaroundTime),
			fmt.Sprintf("%.2f", r.Metrics.AvgResponseTime),
			strconv.Itoa(r.ContextSwitches),
			fmt.Sprintf("%.2f", r.Metrics.Throughput),
			fmt.Sprintf("%.0f%%", r.Metrics.CPUUtilization*100),
		})
	}

	var b strings.Builder
	title := "Policy comparison"
	if name != "" {
		title = fmt.Sprintf("%s: %s", name, title)
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")
	b.WriteString(renderTable(rows, best+1) + "\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// renderPresets lists presets with their process counts.
func renderPresets(w io.Writer, presets []workload.Preset) {
	rows := [][]string{{"Name", "Processes", "Description"}}
	for _, p := range presets {
		rows = append(rows, []string{p.Slug(), strconv.Itoa(len(p.Processes)), p.Description})
	}
	fmt.Fprintln(w, renderTable(rows, -1))
}

// renderTable aligns rows into columns; row 0 is the header and the row at
// highlight (if any) is emphasized.
func renderTable(rows [][]string, highlight int) string {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if n := lipgloss.Width(cell); n > widths[i] {
				widths[i] = n
			}
		}
	}
	lines := make([]string, len(rows))
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			style := cellStyle.Width(widths[i] + 2)
			switch r {
			case 0:
				style = style.Inherit(headerStyle)
			case highlight:
				style = style.Inherit(bestStyle)
			}
			cells[i] = style.Render(cell)
		}
		lines[r] = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderGantt draws the timeline as a strip of blocks sized by duration,
// with start times underneath.
func renderGantt(tl sim.Timeline) string {
	end := tl.End()
	if len(tl) == 0 || end <= 0 {
		return mutedStyle.Render("(empty timeline)")
	}
	scale := float64(ganttWidth) / end
	colorOf := make(map[int]lipgloss.Color)

	var blocks, ticks []string
	cursor := 0.0
	for _, e := range tl {
		if e.Start > cursor {
			idle := blockWidth(e.Start-cursor, scale, 1)
			blocks = append(blocks, mutedStyle.Width(idle).Render(strings.Repeat("·", idle)))
			ticks = append(ticks, tick(cursor, idle))
		}
		label := fmt.Sprintf("P%d", e.PID)
		style := lipgloss.NewStyle()
		if e.IsContextSwitch {
			label = "CS"
			style = style.Foreground(colorTextMuted)
		} else {
			c, ok := colorOf[e.PID]
			if !ok {
				c = blockColors[len(colorOf)%len(blockColors)]
				colorOf[e.PID] = c
			}
			style = style.Background(c).Bold(true)
		}
		width := blockWidth(e.Duration(), scale, len(label)+2)
		blocks = append(blocks, style.Width(width).Align(lipgloss.Center).Render(label))
		ticks = append(ticks, tick(e.Start, width))
		cursor = math.Max(cursor, e.End)
	}
	ticks = append(ticks, num(end))
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, blocks...),
		lipgloss.JoinHorizontal(lipgloss.Top, ticks...),
	)
}

// tick renders a time label truncated to the block width below it.
func tick(v float64, width int) string {
	label := num(v)
	if len(label) > width {
		label = label[:width]
	}
	return lipgloss.NewStyle().Width(width).Render(label)
}

func blockWidth(duration, scale float64, minWidth int) int {
	w := int(math.Round(duration * scale))
	if w < minWidth {
		return minWidth
	}
	return w
}

// num renders a time without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}
