// Package task holds the task forest model, its JSON file codec, and the
// recursive helpers used to walk and reshape it.
package task

import "github.com/tcsenpai/TG-Manager/internal/state"

// Task is one node of a user's forest. Field order matches the on-disk
// document. Absent and empty are equivalent for the optional string fields
// and for Subtasks, but a decoded task still writes back the keys it was
// read with, including ones it does not model.
type Task struct {
	ID          int     `json:"id" yaml:"id"`
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Subtasks    []*Task `json:"subtasks,omitempty" yaml:"subtasks,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	State       string  `json:"state,omitempty" yaml:"state,omitempty"`
	Priority    *int    `json:"priority,omitempty" yaml:"priority,omitempty"`

	layout *layout
}

// Meta carries per-user metadata stored next to the forest.
type Meta struct {
	States []state.TaskState `json:"states" yaml:"states"`

	layout *layout
}

// File is the persisted unit: metadata plus the top-level forest.
type File struct {
	Meta  Meta    `json:"meta" yaml:"meta"`
	Datas []*Task `json:"datas" yaml:"datas"`

	layout *layout
}

// NewFile returns an empty forest with the default state sequence.
func NewFile() *File {
	return &File{
		Meta:  Meta{States: state.Defaults()},
		Datas: []*Task{},
	}
}

// Clone returns a deep copy of t and its whole subtree.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Priority != nil {
		p := *t.Priority
		c.Priority = &p
	}
	if t.Subtasks != nil {
		c.Subtasks = make([]*Task, len(t.Subtasks))
		for i, child := range t.Subtasks {
			c.Subtasks[i] = child.Clone()
		}
	}
	return &c
}

// DisplayName returns the task name or a placeholder for unnamed tasks.
func (t *Task) DisplayName() string {
	if t.Name == "" {
		return "untitled"
	}
	return t.Name
}
