package tasklist

import (
	"sort"
	"strings"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/date"
	"github.com/tcsenpai/TG-Manager/internal/state"
	"github.com/tcsenpai/TG-Manager/internal/task"
)

// Sort fields accepted by Query.
const (
	SortID       = "id"
	SortName     = "name"
	SortCreated  = "created"
	SortPriority = "priority"
	SortState    = "state"
)

// SortFields lists the accepted sort fields.
func SortFields() []string {
	return []string{SortID, SortName, SortCreated, SortPriority, SortState}
}

// QueryOptions selects and orders tasks for listing.
type QueryOptions struct {
	// States keeps only tasks in one of these states; empty keeps all.
	States []string
	// HideFinal drops tasks in the final state.
	HideFinal bool
	// Sort orders siblings (or the flat list) by this field; empty keeps
	// stored order.
	Sort    string
	Reverse bool
}

// ValidateQuery checks sort field and state names against the configured
// states.
func ValidateQuery(opts QueryOptions, states []state.TaskState) error {
	for _, s := range opts.States {
		if err := state.Validate(s, states); err != nil {
			return err
		}
	}
	if opts.Sort == "" {
		return nil
	}
	for _, f := range SortFields() {
		if f == opts.Sort {
			return nil
		}
	}
	return clierr.Newf(clierr.InvalidInput, "invalid sort field %q; allowed: %s",
		opts.Sort, strings.Join(SortFields(), ", "))
}

func (o QueryOptions) matches(t *task.Task, states []state.TaskState) bool {
	current := currentState(t, states)
	if o.HideFinal && state.IsFinal(current, states) {
		return false
	}
	if len(o.States) > 0 {
		for _, s := range o.States {
			if s == current {
				return true
			}
		}
		return false
	}
	return true
}

// Prune returns a copy of the forest keeping every task that matches opts
// plus the ancestors needed to reach it. Siblings are sorted when opts.Sort
// is set. The input is not modified.
func Prune(forest []*task.Task, opts QueryOptions, states []state.TaskState) []*task.Task {
	out := make([]*task.Task, 0, len(forest))
	for _, t := range forest {
		if t == nil {
			continue
		}
		children := Prune(t.Subtasks, opts, states)
		if !opts.matches(t, states) && len(children) == 0 {
			continue
		}
		cp := *t
		cp.Subtasks = children
		if len(cp.Subtasks) == 0 {
			cp.Subtasks = nil
		}
		out = append(out, &cp)
	}
	sortTasks(out, opts, states)
	return out
}

// Entry is a task in a flattened listing together with its ancestor IDs.
type Entry struct {
	Task *task.Task `json:"task"`
	Path []int      `json:"path"`
}

// Flat returns the matching tasks of the forest as a single list. Without a
// sort field the list follows depth-first forest order.
func Flat(forest []*task.Task, opts QueryOptions, states []state.TaskState) []Entry {
	var entries []Entry
	task.Walk(forest, func(t *task.Task, ancestors []int) bool {
		if opts.matches(t, states) {
			entries = append(entries, Entry{Task: t, Path: append([]int{}, ancestors...)})
		}
		return true
	})
	if opts.Sort != "" {
		sort.SliceStable(entries, func(i, j int) bool {
			return less(entries[i].Task, entries[j].Task, opts, states)
		})
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries
}

func sortTasks(tasks []*task.Task, opts QueryOptions, states []state.TaskState) {
	if opts.Sort == "" {
		return
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return less(tasks[i], tasks[j], opts, states)
	})
}

func less(a, b *task.Task, opts QueryOptions, states []state.TaskState) bool {
	c := compareTasks(a, b, opts.Sort, states)
	if opts.Reverse {
		return c > 0
	}
	return c < 0
}

func compareTasks(a, b *task.Task, field string, states []state.TaskState) int {
	switch field {
	case SortName:
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case SortCreated:
		return date.Compare(a.Timestamp, b.Timestamp)
	case SortPriority:
		return comparePriority(a.Priority, b.Priority)
	case SortState:
		return state.Index(states, currentState(a, states)) - state.Index(states, currentState(b, states))
	default:
		return a.ID - b.ID
	}
}

// comparePriority orders by value; tasks without a priority sort last.
func comparePriority(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return *a - *b
	}
}
