package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tcsenpai/TG-Manager/internal/state"
	"github.com/tcsenpai/TG-Manager/internal/task"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

// TreeCompact renders the forest one task per line, indented two spaces per
// level.
func TreeCompact(w io.Writer, forest []*task.Task) {
	if len(forest) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}
	task.Walk(forest, func(t *task.Task, ancestors []int) bool {
		fmt.Fprintln(w, strings.Repeat("  ", len(ancestors))+formatTaskLine(t))
		return true
	})
}

// FlatCompact renders a flattened listing one task per line.
func FlatCompact(w io.Writer, entries []tasklist.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}
	for _, e := range entries {
		line := formatTaskLine(e.Task)
		if len(e.Path) > 0 {
			line += " parent:#" + strconv.Itoa(e.Path[len(e.Path)-1])
		}
		fmt.Fprintln(w, line)
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t *task.Task, path []int) {
	line := formatTaskLine(t)
	if len(path) > 0 {
		line += " in:" + pathDisplay(path)
	}
	if len(t.Subtasks) > 0 {
		line += " subtasks:" + strconv.Itoa(len(t.Subtasks))
	}
	fmt.Fprintln(w, line)

	if t.Description != "" {
		for _, descLine := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+descLine)
		}
	}
}

// StatsCompact renders counts on one line: "todo=3 currently_doing=1 done=0 total=4".
func StatsCompact(w io.Writer, stats map[string]int, states []state.TaskState) {
	parts := make([]string, 0, len(stats))
	for _, name := range statsOrder(stats, states) {
		parts = append(parts, name+"="+strconv.Itoa(stats[name]))
	}
	parts = append(parts, tasklist.TotalKey+"="+strconv.Itoa(stats[tasklist.TotalKey]))
	fmt.Fprintln(w, strings.Join(parts, " "))
}

// SearchCompact renders search hits one per line.
func SearchCompact(w io.Writer, results []tasklist.Result) {
	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "No matches.")
		return
	}
	for _, r := range results {
		line := formatTaskLine(r.Task) + " match:" + strings.Join(r.MatchedFields, ",")
		if len(r.Path) > 0 {
			line += " in:" + pathDisplay(r.Path)
		}
		fmt.Fprintln(w, line)
	}
}

// KeyValues renders a map as sorted key=value lines.
func KeyValues(w io.Writer, m map[string]any) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s=%v\n", k, m[k])
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task) string {
	s := t.State
	if s == "" {
		s = "-"
	}
	line := "#" + strconv.Itoa(t.ID) + " [" + s + "] " + t.DisplayName()
	if t.Priority != nil {
		line += " p:" + strconv.Itoa(*t.Priority)
	}
	if t.Timestamp != "" {
		line += " " + t.Timestamp
	}
	return line
}
