package task

// VisitFunc is called for every node during Walk. ancestors holds the IDs
// from the root down to (not including) t; it is reused between calls, so
// copy it before retaining. Returning false stops the walk.
type VisitFunc func(t *Task, ancestors []int) bool

// Walk visits every task in the forest depth-first, parents before children,
// in stored order.
func Walk(forest []*Task, fn VisitFunc) {
	walk(forest, nil, fn)
}

func walk(nodes []*Task, ancestors []int, fn VisitFunc) bool {
	for _, t := range nodes {
		if t == nil {
			continue
		}
		if !fn(t, ancestors) {
			return false
		}
		if len(t.Subtasks) > 0 {
			if !walk(t.Subtasks, append(ancestors, t.ID), fn) {
				return false
			}
		}
	}
	return true
}

// Find returns the task with the given ID anywhere in the forest, or nil.
func Find(forest []*Task, id int) *Task {
	found, _ := FindWithPath(forest, id)
	return found
}

// FindWithPath returns the task with the given ID and the IDs of its
// ancestors from the root down.
func FindWithPath(forest []*Task, id int) (*Task, []int) {
	var (
		found *Task
		path  []int
	)
	Walk(forest, func(t *Task, ancestors []int) bool {
		if t.ID == id {
			found = t
			path = append([]int{}, ancestors...)
			return false
		}
		return true
	})
	return found, path
}

// IDs returns every ID in the forest, including nested subtasks.
func IDs(forest []*Task) []int {
	var ids []int
	Walk(forest, func(t *Task, _ []int) bool {
		ids = append(ids, t.ID)
		return true
	})
	return ids
}

// Count returns the number of nodes in the forest.
func Count(forest []*Task) int {
	n := 0
	Walk(forest, func(*Task, []int) bool {
		n++
		return true
	})
	return n
}

// Flatten returns every node in walk order.
func Flatten(forest []*Task) []*Task {
	var out []*Task
	Walk(forest, func(t *Task, _ []int) bool {
		out = append(out, t)
		return true
	})
	return out
}

// Descendants returns every node below t, excluding t itself.
func (t *Task) Descendants() []*Task {
	return Flatten(t.Subtasks)
}

// Contains reports whether id is t itself or anywhere in its subtree.
func (t *Task) Contains(id int) bool {
	return t.ID == id || Find(t.Subtasks, id) != nil
}

// Remove detaches the task with the given ID from wherever it lives and
// returns the resulting top-level forest together with the detached subtree.
// The returned forest shares nodes with the input.
func Remove(forest []*Task, id int) ([]*Task, *Task) {
	for i, t := range forest {
		if t == nil {
			continue
		}
		if t.ID == id {
			return append(forest[:i:i], forest[i+1:]...), t
		}
		if rest, removed := Remove(t.Subtasks, id); removed != nil {
			t.Subtasks = rest
			return forest, removed
		}
	}
	return forest, nil
}
