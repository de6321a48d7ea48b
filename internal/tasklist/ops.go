package tasklist

import (
	"fmt"
	"strings"

	"github.com/tcsenpai/TG-Manager/internal/activity"
	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/date"
	"github.com/tcsenpai/TG-Manager/internal/idalloc"
	"github.com/tcsenpai/TG-Manager/internal/state"
	"github.com/tcsenpai/TG-Manager/internal/task"
)

// Add creates a task from fields and returns its ID. With a nil parentID the
// task goes to the top level; otherwise it is appended to that task's
// subtasks. The state defaults to the first configured state and the
// timestamp to today.
func (m *Manager) Add(fields task.Fields, parentID *int) (int, error) {
	var id int
	err := m.update(func(f *task.File) ([]change, error) {
		var parent *task.Task
		if parentID != nil {
			if parent = task.Find(f.Datas, *parentID); parent == nil {
				return nil, task.NotFound(*parentID)
			}
		}

		newID, err := idalloc.Assign(task.IDs(f.Datas), fields.ID)
		if err != nil {
			return nil, err
		}

		t := &task.Task{
			ID:        newID,
			State:     state.Default(f.Meta.States),
			Timestamp: date.From(m.now()).String(),
		}
		fields.Apply(t)
		if err := state.Validate(t.State, f.Meta.States); err != nil {
			return nil, task.WithTaskID(err, newID)
		}

		if parent != nil {
			parent.Subtasks = append(parent.Subtasks, t)
		} else {
			f.Datas = append(f.Datas, t)
		}

		id = newID
		detail := t.Name
		if parent != nil {
			detail = fmt.Sprintf("%s (under #%d)", t.Name, parent.ID)
		}
		return []change{{activity.ActionAdd, newID, detail}}, nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns the task with the given ID from anywhere in the forest.
func (m *Manager) Get(id int) (*task.Task, error) {
	var out *task.Task
	err := m.view(func(f *task.File) error {
		if out = task.Find(f.Datas, id); out == nil {
			return task.NotFound(id)
		}
		return nil
	})
	return out, err
}

// GetAll returns the top-level forest as stored.
func (m *Manager) GetAll() ([]*task.Task, error) {
	var out []*task.Task
	err := m.view(func(f *task.File) error {
		out = f.Datas
		return nil
	})
	return out, err
}

// Edit merges fields into every listed task, and into their whole subtrees
// when cascade is set. The batch is all-or-nothing.
func (m *Manager) Edit(ids []int, fields task.Fields, cascade bool) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return emptyBatch()
	}
	if fields.IsEmpty() {
		return clierr.New(clierr.InvalidInput, "no fields to update")
	}

	return m.update(func(f *task.File) ([]change, error) {
		if err := requireAll(f.Datas, ids); err != nil {
			return nil, err
		}
		if fields.State != nil {
			if err := state.Validate(*fields.State, f.Meta.States); err != nil {
				return nil, task.WithTaskID(err, ids[0])
			}
		}

		detail := describe(fields, cascade)
		changes := make([]change, 0, len(ids))
		for _, id := range ids {
			fields.ApplyTree(task.Find(f.Datas, id), cascade)
			changes = append(changes, change{activity.ActionEdit, id, detail})
		}
		return changes, nil
	})
}

// Transition records a state change made by AdvanceState or CompleteState.
type Transition struct {
	ID   int    `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// AdvanceState moves every listed task to the state after its current one.
// A task already in the final state fails the whole batch with
// NoFurtherState. With cascade, the task's descendants receive the same new
// state.
func (m *Manager) AdvanceState(ids []int, cascade bool) ([]Transition, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, emptyBatch()
	}

	var transitions []Transition
	err := m.update(func(f *task.File) ([]change, error) {
		if err := requireAll(f.Datas, ids); err != nil {
			return nil, err
		}

		transitions = transitions[:0]
		changes := make([]change, 0, len(ids))
		for _, id := range ids {
			t := task.Find(f.Datas, id)
			current := currentState(t, f.Meta.States)

			next, ok, err := state.Next(current, f.Meta.States)
			if err != nil {
				return nil, task.WithTaskID(err, id)
			}
			if !ok {
				return nil, task.NoFurtherState(id, current)
			}

			task.Fields{State: &next}.ApplyTree(t, cascade)
			transitions = append(transitions, Transition{ID: id, From: current, To: next})
			changes = append(changes, change{activity.ActionAdvance, id, current + " -> " + next})
		}
		return changes, nil
	})
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

// CompleteState sets every listed task to the final state regardless of its
// current one.
func (m *Manager) CompleteState(ids []int, cascade bool) ([]Transition, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return nil, emptyBatch()
	}

	var transitions []Transition
	err := m.update(func(f *task.File) ([]change, error) {
		if err := requireAll(f.Datas, ids); err != nil {
			return nil, err
		}
		final := state.Final(f.Meta.States)
		if final == "" {
			return nil, clierr.New(clierr.UnknownState, "no states are configured")
		}

		transitions = transitions[:0]
		changes := make([]change, 0, len(ids))
		for _, id := range ids {
			t := task.Find(f.Datas, id)
			from := t.State
			task.Fields{State: &final}.ApplyTree(t, cascade)
			transitions = append(transitions, Transition{ID: id, From: from, To: final})
			changes = append(changes, change{activity.ActionComplete, id, from + " -> " + final})
		}
		return changes, nil
	})
	if err != nil {
		return nil, err
	}
	return transitions, nil
}

// Delete removes every listed task together with its subtree and returns the
// number of nodes removed. IDs that sit inside a subtree removed earlier in
// the same batch are skipped.
func (m *Manager) Delete(ids []int) (int, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return 0, emptyBatch()
	}

	removed := 0
	err := m.update(func(f *task.File) ([]change, error) {
		if err := requireAll(f.Datas, ids); err != nil {
			return nil, err
		}

		removed = 0
		changes := make([]change, 0, len(ids))
		for _, id := range ids {
			var t *task.Task
			f.Datas, t = task.Remove(f.Datas, id)
			if t == nil {
				continue
			}
			n := 1 + len(t.Descendants())
			removed += n
			changes = append(changes, change{activity.ActionDelete, id, fmt.Sprintf("%s (%d node(s))", t.Name, n)})
		}
		return changes, nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Move relocates every listed task, with its subtree, under newParent or to
// the top level when newParent is nil. A task cannot be moved into its own
// subtree. The relocation is a single save.
func (m *Manager) Move(ids []int, newParent *int) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return emptyBatch()
	}

	return m.update(func(f *task.File) ([]change, error) {
		if err := requireAll(f.Datas, ids); err != nil {
			return nil, err
		}
		if newParent != nil {
			if task.Find(f.Datas, *newParent) == nil {
				return nil, task.NotFound(*newParent)
			}
		}

		detail := "to top level"
		if newParent != nil {
			detail = fmt.Sprintf("under #%d", *newParent)
		}

		changes := make([]change, 0, len(ids))
		for _, id := range ids {
			t := task.Find(f.Datas, id)
			if newParent != nil && t.Contains(*newParent) {
				return nil, task.ValidateMoveTarget(id, *newParent)
			}

			f.Datas, _ = task.Remove(f.Datas, id)
			if newParent == nil {
				f.Datas = append(f.Datas, t)
			} else {
				p := task.Find(f.Datas, *newParent)
				p.Subtasks = append(p.Subtasks, t)
			}
			changes = append(changes, change{activity.ActionMove, id, detail})
		}
		return changes, nil
	})
}

// Result is one search hit.
type Result struct {
	Task *task.Task `json:"task"`
	// Path holds the ancestor IDs from the root down, excluding the task.
	Path          []int    `json:"path"`
	MatchedFields []string `json:"matchedFields"`
}

// Search returns every task where at least one whitespace-separated token of
// query occurs, case-insensitively, in the name or, when
// includeDescriptions is set, the description. Results follow forest order.
func (m *Manager) Search(query string, includeDescriptions bool) ([]Result, error) {
	tokens := strings.Fields(strings.ToLower(query))
	results := []Result{}
	if len(tokens) == 0 {
		return results, nil
	}

	err := m.view(func(f *task.File) error {
		task.Walk(f.Datas, func(t *task.Task, ancestors []int) bool {
			var matched []string
			if containsAny(t.Name, tokens) {
				matched = append(matched, "name")
			}
			if includeDescriptions && containsAny(t.Description, tokens) {
				matched = append(matched, "description")
			}
			if len(matched) > 0 {
				results = append(results, Result{
					Task:          t,
					Path:          append([]int{}, ancestors...),
					MatchedFields: matched,
				})
			}
			return true
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// TotalKey is the Stats entry holding the node count.
const TotalKey = "total"

// Stats counts every node by state. Every configured state is present, at
// zero when unused, and TotalKey holds the sum. A task without a state counts
// toward the default state. A configured state named TotalKey is rejected
// since its count would be indistinguishable from the sum.
func (m *Manager) Stats() (map[string]int, error) {
	counts := map[string]int{}
	err := m.view(func(f *task.File) error {
		for _, s := range f.Meta.States {
			if s.Name == TotalKey {
				return clierr.Newf(clierr.InvalidInput, "state name %q is reserved for the stats total", TotalKey).
					WithDetails(map[string]any{"state": TotalKey})
			}
			counts[s.Name] = 0
		}
		total := 0
		task.Walk(f.Datas, func(t *task.Task, _ []int) bool {
			counts[currentState(t, f.Meta.States)]++
			total++
			return true
		})
		counts[TotalKey] = total
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

// currentState treats a task without a state as being in the default state.
func currentState(t *task.Task, states []state.TaskState) string {
	if t.State == "" {
		return state.Default(states)
	}
	return t.State
}

func containsAny(s string, tokens []string) bool {
	if s == "" {
		return false
	}
	s = strings.ToLower(s)
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

// describe summarizes an edit for the activity log.
func describe(f task.Fields, cascade bool) string {
	var parts []string
	if f.Name != nil {
		parts = append(parts, "name="+*f.Name)
	}
	if f.Description != nil {
		parts = append(parts, "description")
	}
	if f.State != nil {
		parts = append(parts, "state="+*f.State)
	}
	switch {
	case f.ClearPriority:
		parts = append(parts, "priority cleared")
	case f.Priority != nil:
		parts = append(parts, fmt.Sprintf("priority=%d", *f.Priority))
	}
	if cascade {
		parts = append(parts, "cascade")
	}
	return strings.Join(parts, ", ")
}
