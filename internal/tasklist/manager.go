// Package tasklist implements the operations on one user's task forest.
// Every operation loads the forest from the store, works on it in memory
// and, for mutations, saves it exactly once. Operations for the same user
// are serialized through the store lock.
package tasklist

import (
	"time"

	"github.com/tcsenpai/TG-Manager/internal/activity"
	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/state"
	"github.com/tcsenpai/TG-Manager/internal/store"
	"github.com/tcsenpai/TG-Manager/internal/task"
)

// Manager performs task operations against a single user's store.
type Manager struct {
	store *store.Store
	log   *activity.Log
	now   func() time.Time

	// unmodifiedSince, when set, makes mutations fail with StaleData if the
	// data file changed after that instant.
	unmodifiedSince time.Time
}

// New returns a Manager for s. Mutations are recorded in the activity log
// inside the user's directory.
func New(s *store.Store) *Manager {
	return &Manager{
		store: s,
		log:   activity.New(s.Dir()),
		now:   time.Now,
	}
}

// Store returns the underlying storage engine.
func (m *Manager) Store() *store.Store { return m.store }

// Activity returns the user's activity log.
func (m *Manager) Activity() *activity.Log { return m.log }

// IfUnmodifiedSince returns a copy of m whose mutations are refused when the
// data file was written by someone else after t.
func (m *Manager) IfUnmodifiedSince(t time.Time) *Manager {
	cp := *m
	cp.unmodifiedSince = t
	return &cp
}

// Initialize prepares the user's storage. It is idempotent.
func (m *Manager) Initialize() error {
	unlock, err := m.store.Lock()
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()
	return m.store.Initialize()
}

// change is one activity log line produced by a mutation.
type change struct {
	action string
	id     int
	detail string
}

// view loads the forest under the user lock and hands it to fn.
func (m *Manager) view(fn func(f *task.File) error) error {
	unlock, err := m.store.Lock()
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	f, err := m.store.Load()
	if err != nil {
		return err
	}
	return fn(f)
}

// update loads the forest, lets fn mutate it, and saves it once. If fn fails
// nothing is written.
func (m *Manager) update(fn func(f *task.File) ([]change, error)) error {
	unlock, err := m.store.Lock()
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	if !m.unmodifiedSince.IsZero() {
		changed, err := m.store.WasModifiedSince(m.unmodifiedSince)
		if err != nil {
			return err
		}
		if changed {
			return clierr.Newf(clierr.StaleData, "%s was modified after %s",
				m.store.DataPath(), m.unmodifiedSince.Format(time.RFC3339)).
				WithDetails(map[string]any{"path": m.store.DataPath()})
		}
	}

	f, err := m.store.Load()
	if err != nil {
		return err
	}

	changes, err := fn(f)
	if err != nil {
		return err
	}
	if err := m.store.Save(f); err != nil {
		return err
	}

	for _, c := range changes {
		m.log.Record(c.action, c.id, c.detail)
	}
	return nil
}

// States returns the user's configured state sequence.
func (m *Manager) States() ([]state.TaskState, error) {
	var states []state.TaskState
	err := m.view(func(f *task.File) error {
		states = f.Meta.States
		return nil
	})
	return states, err
}

// File returns the whole stored document.
func (m *Manager) File() (*task.File, error) {
	var out *task.File
	err := m.view(func(f *task.File) error {
		out = f
		return nil
	})
	return out, err
}

// Restore replaces the data file with a named backup.
func (m *Manager) Restore(name string) error {
	unlock, err := m.store.Lock()
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	if err := m.store.Restore(name); err != nil {
		return err
	}
	m.log.Record(activity.ActionRestore, -1, name)
	return nil
}

// requireAll fails with TaskNotFound for the first id that is not in the
// forest.
func requireAll(forest []*task.Task, ids []int) error {
	for _, id := range ids {
		if task.Find(forest, id) == nil {
			return task.NotFound(id)
		}
	}
	return nil
}

// dedupe keeps the first occurrence of every id.
func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func emptyBatch() error {
	return clierr.New(clierr.InvalidTaskID, "no task IDs provided")
}
