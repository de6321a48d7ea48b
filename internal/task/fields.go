package task

// Fields is a partial task used by add and edit. Nil fields are left alone.
type Fields struct {
	ID          *int
	Name        *string
	Description *string
	State       *string
	Priority    *int

	// ClearPriority removes the priority; it wins over Priority.
	ClearPriority bool
}

// IsEmpty reports whether applying f would change nothing.
func (f Fields) IsEmpty() bool {
	return f.Name == nil && f.Description == nil && f.State == nil &&
		f.Priority == nil && !f.ClearPriority
}

// Apply merges the set fields into t. ID is never applied; it is assigned
// once at creation.
func (f Fields) Apply(t *Task) {
	if f.Name != nil {
		t.Name = *f.Name
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.State != nil {
		t.State = *f.State
	}
	switch {
	case f.ClearPriority:
		t.Priority = nil
	case f.Priority != nil:
		p := *f.Priority
		t.Priority = &p
	}
}

// ApplyTree merges f into t and, when cascade is set, into every descendant.
func (f Fields) ApplyTree(t *Task, cascade bool) {
	f.Apply(t)
	if !cascade {
		return
	}
	for _, d := range t.Descendants() {
		f.Apply(d)
	}
}
