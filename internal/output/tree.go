package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tcsenpai/TG-Manager/internal/activity"
	"github.com/tcsenpai/TG-Manager/internal/state"
	"github.com/tcsenpai/TG-Manager/internal/task"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	boldStyle   = lipgloss.NewStyle().Bold(true)
)

// StateStyle returns the style for a state, colored with its hexColor.
func StateStyle(name string, states []state.TaskState) lipgloss.Style {
	st, ok := state.Lookup(states, name)
	if !ok || st.HexColor == "" || !colorEnabled {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(st.HexColor))
}

// StateLabel renders "icon name" in the state's color.
func StateLabel(name string, states []state.TaskState) string {
	label := name
	if label == "" {
		label = "--"
	}
	if st, ok := state.Lookup(states, name); ok && st.Icon != "" {
		label = st.Icon + " " + label
	}
	return StateStyle(name, states).Render(label)
}

// Tree renders the forest with box-drawing connectors, one task per line.
func Tree(w io.Writer, forest []*task.Task, states []state.TaskState) {
	if len(forest) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}
	for _, t := range forest {
		fmt.Fprintln(w, treeLine(t, states))
		writeChildren(w, t.Subtasks, "", states)
	}
}

func writeChildren(w io.Writer, children []*task.Task, prefix string, states []state.TaskState) {
	for i, c := range children {
		branch, indent := "├── ", "│   "
		if i == len(children)-1 {
			branch, indent = "└── ", "    "
		}
		fmt.Fprintln(w, dimStyle.Render(prefix+branch)+treeLine(c, states))
		writeChildren(w, c.Subtasks, prefix+indent, states)
	}
}

func treeLine(t *task.Task, states []state.TaskState) string {
	parts := []string{
		boldStyle.Render("#" + strconv.Itoa(t.ID)),
		StateLabel(t.State, states),
		t.DisplayName(),
	}
	if t.Priority != nil {
		parts = append(parts, dimStyle.Render("p:"+strconv.Itoa(*t.Priority)))
	}
	if t.Timestamp != "" {
		parts = append(parts, dimStyle.Render(t.Timestamp))
	}
	return strings.Join(parts, " ")
}

// FlatTable renders a flattened listing as aligned columns.
func FlatTable(w io.Writer, entries []tasklist.Entry, states []state.TaskState) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, stateW, nameW := 4, 7, 6
	for _, e := range entries {
		idW = max(idW, len(strconv.Itoa(e.Task.ID))+1+pad)
		stateW = max(stateW, lipgloss.Width(StateLabel(e.Task.State, states))+pad)
		nameW = max(nameW, min(lipgloss.Width(e.Task.DisplayName())+pad, 50)) //nolint:mnd // max name column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-8s %-12s %s",
		idW, "ID", stateW, "STATE", nameW, "NAME", "PRIORITY", "CREATED", "PARENT")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, e := range entries {
		t := e.Task
		name := t.DisplayName()
		const maxName = 48
		if lipgloss.Width(name) > maxName {
			name = string([]rune(name)[:maxName-3]) + "..."
		}
		prio := dimStyle.Render("--")
		if t.Priority != nil {
			prio = strconv.Itoa(*t.Priority)
		}
		parent := dimStyle.Render("--")
		if len(e.Path) > 0 {
			parent = "#" + strconv.Itoa(e.Path[len(e.Path)-1])
		}

		row := fmt.Sprintf("%s %s %s %s %s %s",
			padRight("#"+strconv.Itoa(t.ID), idW),
			padRight(StateLabel(t.State, states), stateW),
			padRight(name, nameW),
			padRight(prio, 8), //nolint:mnd // column width
			padRight(stringOrDash(t.Timestamp), 12), //nolint:mnd // column width
			parent)
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail. The description is
// rendered as markdown.
func TaskDetail(w io.Writer, t *task.Task, path []int, states []state.TaskState) {
	titleLine := fmt.Sprintf("Task #%d: %s", t.ID, t.DisplayName())
	fmt.Fprintln(w, boldStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "State", StateLabel(t.State, states))
	if t.Priority != nil {
		printField(w, "Priority", strconv.Itoa(*t.Priority))
	} else {
		printField(w, "Priority", dimStyle.Render("--"))
	}
	printField(w, "Created", stringOrDash(t.Timestamp))
	printField(w, "Parent", parentDisplay(path))
	printField(w, "Subtasks", strconv.Itoa(len(t.Subtasks)))
	if n := len(t.Descendants()); n > len(t.Subtasks) {
		printField(w, "Descendants", strconv.Itoa(n))
	}

	if len(t.Subtasks) > 0 {
		fmt.Fprintln(w)
		writeChildren(w, t.Subtasks, "", states)
	}

	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.TrimRight(Markdown(t.Description, 0), "\n"))
	}
}

// StatsTable renders per-state counts in configured order, followed by any
// states found on tasks but not configured, and the total.
func StatsTable(w io.Writer, stats map[string]int, states []state.TaskState) {
	const stateColW = 24
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-*s %6s", stateColW, "STATE", "COUNT")))

	for _, name := range statsOrder(stats, states) {
		fmt.Fprintf(w, "%s %6d\n", padRight(StateLabel(name, states), stateColW), stats[name])
	}
	fmt.Fprintln(w, boldStyle.Render(fmt.Sprintf("%-*s %6d", stateColW, "total", stats[tasklist.TotalKey])))
}

func statsOrder(stats map[string]int, states []state.TaskState) []string {
	names := state.Names(states)
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	var extra []string
	for k := range stats {
		if !known[k] && k != tasklist.TotalKey {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// SearchTable renders search hits with their ancestor path.
func SearchTable(w io.Writer, results []tasklist.Result, states []state.TaskState) {
	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "No matches.")
		return
	}
	for _, r := range results {
		line := treeLine(r.Task, states)
		if len(r.Path) > 0 {
			line += " " + dimStyle.Render("in "+pathDisplay(r.Path))
		}
		line += " " + dimStyle.Render("["+strings.Join(r.MatchedFields, ",")+"]")
		fmt.Fprintln(w, line)
	}
}

// BackupList renders backup names, newest first.
func BackupList(w io.Writer, names []string) {
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "No backups found.")
		return
	}
	for i, n := range names {
		marker := "  "
		if i == 0 {
			marker = "* "
		}
		fmt.Fprintln(w, marker+n)
	}
}

// ActivityTable renders activity log entries, oldest first.
func ActivityTable(w io.Writer, entries []activity.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}
	for _, e := range entries {
		id := dimStyle.Render("--")
		if e.TaskID >= 0 {
			id = "#" + strconv.Itoa(e.TaskID)
		}
		fmt.Fprintf(w, "%s %-9s %s %s\n",
			dimStyle.Render(e.Timestamp.Local().Format("2006-01-02 15:04:05")),
			e.Action, padRight(id, 5), e.Detail) //nolint:mnd // id column width
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

func parentDisplay(path []int) string {
	if len(path) == 0 {
		return dimStyle.Render("(top level)")
	}
	return pathDisplay(path)
}

func pathDisplay(path []int) string {
	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = "#" + strconv.Itoa(id)
	}
	return strings.Join(parts, " › ")
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func stringOrDash(s string) string {
	if s == "" {
		return dimStyle.Render("--")
	}
	return s
}
