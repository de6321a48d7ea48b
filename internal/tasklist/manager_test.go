package tasklist

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcsenpai/TG-Manager/internal/activity"
	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/state"
	"github.com/tcsenpai/TG-Manager/internal/store"
	"github.com/tcsenpai/TG-Manager/internal/task"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func named(name string) task.Fields { return task.Fields{Name: strPtr(name)} }

func newManager(t *testing.T) *Manager {
	t.Helper()
	s, err := store.New("1001", store.Options{Root: t.TempDir()})
	require.NoError(t, err)
	m := New(s)
	m.now = func() time.Time { return time.Date(2026, time.October, 17, 15, 4, 5, 0, time.Local) }
	return m
}

func mustAdd(t *testing.T, m *Manager, name string, parent *int) int {
	t.Helper()
	id, err := m.Add(named(name), parent)
	require.NoError(t, err)
	return id
}

func TestAdd_Defaults(t *testing.T) {
	m := newManager(t)

	id := mustAdd(t, m, "Write report", nil)
	assert.Equal(t, 0, id)

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Write report", got.Name)
	assert.Equal(t, state.Todo, got.State)
	assert.Equal(t, "17/10/2026", got.Timestamp)
	assert.Nil(t, got.Priority)
}

func TestAdd_AllFields(t *testing.T) {
	m := newManager(t)

	id, err := m.Add(task.Fields{
		Name:        strPtr("Ship"),
		Description: strPtr("the **release**"),
		State:       strPtr(state.CurrentlyDoing),
		Priority:    intPtr(0),
	}, nil)
	require.NoError(t, err)

	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "the **release**", got.Description)
	assert.Equal(t, state.CurrentlyDoing, got.State)
	require.NotNil(t, got.Priority)
	assert.Equal(t, 0, *got.Priority)
}

func TestAdd_UnknownState(t *testing.T) {
	m := newManager(t)

	_, err := m.Add(task.Fields{Name: strPtr("x"), State: strPtr("blocked")}, nil)
	assert.True(t, clierr.Is(err, clierr.UnknownState))

	all, err := m.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all, "failed add must not persist")
}

func TestAdd_ExplicitID(t *testing.T) {
	m := newManager(t)

	id, err := m.Add(task.Fields{ID: intPtr(7), Name: strPtr("seven")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	_, err = m.Add(task.Fields{ID: intPtr(7), Name: strPtr("again")}, nil)
	assert.True(t, clierr.Is(err, clierr.DuplicateID))

	// Allocation fills the gap below the explicit id.
	assert.Equal(t, 0, mustAdd(t, m, "zero", nil))
}

func TestAdd_MissingParent(t *testing.T) {
	m := newManager(t)
	_, err := m.Add(named("orphan"), intPtr(3))
	assert.True(t, clierr.Is(err, clierr.TaskNotFound))
}

func TestScenario_GapReuse(t *testing.T) {
	m := newManager(t)

	assert.Equal(t, 0, mustAdd(t, m, "A", nil))
	assert.Equal(t, 1, mustAdd(t, m, "B", nil))

	_, err := m.Delete([]int{0})
	require.NoError(t, err)

	assert.Equal(t, 0, mustAdd(t, m, "C", nil))
}

func TestScenario_AdvanceToFinal(t *testing.T) {
	m := newManager(t)
	id := mustAdd(t, m, "task", nil)

	tr, err := m.AdvanceState([]int{id}, false)
	require.NoError(t, err)
	assert.Equal(t, []Transition{{ID: id, From: state.Todo, To: state.CurrentlyDoing}}, tr)

	_, err = m.AdvanceState([]int{id}, false)
	require.NoError(t, err)
	got, err := m.Get(id)
	require.NoError(t, err)
	assert.Equal(t, state.Done, got.State)

	_, err = m.AdvanceState([]int{id}, false)
	assert.True(t, clierr.Is(err, clierr.NoFurtherState))
}

func TestAdvance_StepsEqualStatesMinusOne(t *testing.T) {
	m := newManager(t)
	id := mustAdd(t, m, "task", nil)
	states, err := m.States()
	require.NoError(t, err)

	for k := 0; k < len(states)-1; k++ {
		_, err := m.AdvanceState([]int{id}, false)
		require.NoError(t, err, "step %d", k)
	}
	_, err = m.AdvanceState([]int{id}, false)
	assert.True(t, clierr.Is(err, clierr.NoFurtherState))
}

func TestAdvance_BatchIsAtomic(t *testing.T) {
	m := newManager(t)
	a := mustAdd(t, m, "a", nil)
	b := mustAdd(t, m, "b", nil)
	_, err := m.CompleteState([]int{b}, false)
	require.NoError(t, err)

	_, err = m.AdvanceState([]int{a, b}, false)
	assert.True(t, clierr.Is(err, clierr.NoFurtherState))

	got, err := m.Get(a)
	require.NoError(t, err)
	assert.Equal(t, state.Todo, got.State, "first id must not be persisted")
}

func TestAdvance_Cascade(t *testing.T) {
	m := newManager(t)
	p := mustAdd(t, m, "p", nil)
	c := mustAdd(t, m, "c", &p)
	g := mustAdd(t, m, "g", &c)

	_, err := m.AdvanceState([]int{p}, true)
	require.NoError(t, err)

	for _, id := range []int{p, c, g} {
		got, err := m.Get(id)
		require.NoError(t, err)
		assert.Equal(t, state.CurrentlyDoing, got.State, "task %d", id)
	}
}

func TestAdvance_StatelessTaskStartsAtDefault(t *testing.T) {
	m := newManager(t)
	f := task.NewFile()
	f.Datas = append(f.Datas, &task.Task{ID: 0, Name: "legacy"})
	require.NoError(t, m.Store().Save(f))

	tr, err := m.AdvanceState([]int{0}, false)
	require.NoError(t, err)
	assert.Equal(t, state.Todo, tr[0].From)
	assert.Equal(t, state.CurrentlyDoing, tr[0].To)
}

func TestCompleteState(t *testing.T) {
	m := newManager(t)
	p := mustAdd(t, m, "p", nil)
	c := mustAdd(t, m, "c", &p)

	_, err := m.CompleteState([]int{p}, false)
	require.NoError(t, err)
	got, err := m.Get(c)
	require.NoError(t, err)
	assert.Equal(t, state.Todo, got.State, "no cascade")

	// Completing an already-final task is not an error.
	_, err = m.CompleteState([]int{p}, true)
	require.NoError(t, err)
	got, err = m.Get(c)
	require.NoError(t, err)
	assert.Equal(t, state.Done, got.State)

	_, err = m.CompleteState([]int{p, 99}, false)
	assert.True(t, clierr.Is(err, clierr.TaskNotFound))
}

func TestEdit(t *testing.T) {
	m := newManager(t)
	p := mustAdd(t, m, "p", nil)
	c := mustAdd(t, m, "c", &p)

	err := m.Edit([]int{p}, task.Fields{Description: strPtr("new"), Priority: intPtr(2)}, true)
	require.NoError(t, err)

	child, err := m.Get(c)
	require.NoError(t, err)
	assert.Equal(t, "new", child.Description)
	assert.Equal(t, 2, *child.Priority)
	assert.Equal(t, "c", child.Name)

	require.NoError(t, m.Edit([]int{c}, task.Fields{ClearPriority: true}, false))
	child, err = m.Get(c)
	require.NoError(t, err)
	assert.Nil(t, child.Priority)
}

func TestEdit_Errors(t *testing.T) {
	m := newManager(t)
	a := mustAdd(t, m, "a", nil)

	err := m.Edit([]int{a, 42}, named("renamed"), false)
	assert.True(t, clierr.Is(err, clierr.TaskNotFound))
	got, err := m.Get(a)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name, "batch must not be partially applied")

	err = m.Edit([]int{a}, task.Fields{State: strPtr("nope")}, false)
	assert.True(t, clierr.Is(err, clierr.UnknownState))

	assert.True(t, clierr.Is(m.Edit([]int{a}, task.Fields{}, false), clierr.InvalidInput))
	assert.True(t, clierr.Is(m.Edit(nil, named("x"), false), clierr.InvalidTaskID))
}

func TestScenario_DeleteParentRemovesChild(t *testing.T) {
	m := newManager(t)

	parent := mustAdd(t, m, "Parent", nil)
	assert.Equal(t, 0, parent)
	child := mustAdd(t, m, "Child", &parent)
	assert.Equal(t, 1, child)

	got, err := m.Get(parent)
	require.NoError(t, err)
	require.Len(t, got.Subtasks, 1)
	assert.Equal(t, child, got.Subtasks[0].ID)

	n, err := m.Delete([]int{parent})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = m.Get(child)
	assert.True(t, clierr.Is(err, clierr.TaskNotFound))

	results, err := m.Search("child", true)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestDelete_Batch(t *testing.T) {
	m := newManager(t)
	p := mustAdd(t, m, "p", nil)
	c := mustAdd(t, m, "c", &p)
	o := mustAdd(t, m, "o", nil)

	// c disappears with p; it is skipped rather than reported missing.
	n, err := m.Delete([]int{p, c})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = m.Delete([]int{o, 77})
	assert.True(t, clierr.Is(err, clierr.TaskNotFound))
	_, err = m.Get(o)
	require.NoError(t, err)
}

func TestMove(t *testing.T) {
	m := newManager(t)
	a := mustAdd(t, m, "a", nil)
	b := mustAdd(t, m, "b", nil)
	c := mustAdd(t, m, "c", &a)

	require.NoError(t, m.Move([]int{a}, &b))

	all, err := m.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, b, all[0].ID)
	require.Len(t, all[0].Subtasks, 1)
	assert.Equal(t, a, all[0].Subtasks[0].ID)
	assert.Equal(t, c, all[0].Subtasks[0].Subtasks[0].ID, "subtree moves along")

	// Back to the top level.
	require.NoError(t, m.Move([]int{c}, nil))
	all, err = m.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, c, all[1].ID)
}

func TestMove_Errors(t *testing.T) {
	m := newManager(t)
	a := mustAdd(t, m, "a", nil)
	c := mustAdd(t, m, "c", &a)

	assert.True(t, clierr.Is(m.Move([]int{a}, &c), clierr.MoveIntoSelf))
	assert.True(t, clierr.Is(m.Move([]int{a}, &a), clierr.MoveIntoSelf))
	assert.True(t, clierr.Is(m.Move([]int{9}, &a), clierr.TaskNotFound))
	assert.True(t, clierr.Is(m.Move([]int{c}, intPtr(9)), clierr.TaskNotFound))

	got, err := m.Get(a)
	require.NoError(t, err)
	require.Len(t, got.Subtasks, 1)
}

func TestScenario_Search(t *testing.T) {
	m := newManager(t)
	w := mustAdd(t, m, "Sync wallet", nil)
	mustAdd(t, m, "Unrelated", nil)
	j := mustAdd(t, m, "Sync tasks.json", &w)

	results, err := m.Search("sync", true)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, w, results[0].Task.ID)
	assert.Empty(t, results[0].Path)
	assert.Contains(t, results[0].MatchedFields, "name")

	assert.Equal(t, j, results[1].Task.ID)
	assert.Equal(t, []int{w}, results[1].Path)
	assert.Contains(t, results[1].MatchedFields, "name")
}

func TestSearch_Descriptions(t *testing.T) {
	m := newManager(t)
	_, err := m.Add(task.Fields{Name: strPtr("Groceries"), Description: strPtr("Milk and EGGS")}, nil)
	require.NoError(t, err)

	results, err := m.Search("eggs bread", true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"description"}, results[0].MatchedFields)

	results, err = m.Search("eggs", false)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = m.Search("   ", true)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStats(t *testing.T) {
	m := newManager(t)
	p := mustAdd(t, m, "p", nil)
	c := mustAdd(t, m, "c", &p)
	mustAdd(t, m, "g", &c)
	mustAdd(t, m, "o", nil)
	_, err := m.AdvanceState([]int{c}, false)
	require.NoError(t, err)

	stats, err := m.Stats()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		state.Todo:           3,
		state.CurrentlyDoing: 1,
		state.Done:           0,
		TotalKey:             4,
	}, stats)

	sum := 0
	for k, v := range stats {
		if k != TotalKey {
			sum += v
		}
	}
	assert.Equal(t, stats[TotalKey], sum)
}

func TestStats_StatelessTaskCountsAsDefault(t *testing.T) {
	m := newManager(t)
	f := task.NewFile()
	f.Datas = []*task.Task{{ID: 0, Name: "no state"}, {ID: 1, Name: "done", State: state.Done}}
	require.NoError(t, m.Store().Save(f))

	stats, err := m.Stats()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		state.Todo:           1,
		state.CurrentlyDoing: 0,
		state.Done:           1,
		TotalKey:             2,
	}, stats)
}

func TestStats_RejectsStateNamedTotal(t *testing.T) {
	m := newManager(t)
	f := task.NewFile()
	f.Meta.States = append(f.Meta.States, state.TaskState{Name: TotalKey, HexColor: "#000000", Icon: "x"})
	f.Datas = []*task.Task{{ID: 0, Name: "a", State: TotalKey}}
	require.NoError(t, m.Store().Save(f))

	_, err := m.Stats()
	require.Error(t, err)
	assert.True(t, clierr.Is(err, clierr.InvalidInput), "got %v", err)
}

func TestMutations_AreLogged(t *testing.T) {
	m := newManager(t)
	a := mustAdd(t, m, "a", nil)
	_, err := m.AdvanceState([]int{a}, false)
	require.NoError(t, err)
	_, err = m.Delete([]int{a})
	require.NoError(t, err)

	entries, err := m.Activity().Tail(0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, activity.ActionAdd, entries[0].Action)
	assert.Equal(t, activity.ActionAdvance, entries[1].Action)
	assert.Equal(t, "todo -> currently_doing", entries[1].Detail)
	assert.Equal(t, activity.ActionDelete, entries[2].Action)
}

func TestIfUnmodifiedSince(t *testing.T) {
	m := newManager(t)
	a := mustAdd(t, m, "a", nil)

	mod, err := m.Store().LastModified()
	require.NoError(t, err)

	require.NoError(t, m.IfUnmodifiedSince(mod).Edit([]int{a}, named("b"), false))

	// Another writer touches the file afterwards.
	mod, err = m.Store().LastModified()
	require.NoError(t, err)
	later := mod.Add(time.Minute)
	require.NoError(t, os.Chtimes(m.Store().DataPath(), later, later))

	err = m.IfUnmodifiedSince(mod).Edit([]int{a}, named("c"), false)
	assert.True(t, clierr.Is(err, clierr.StaleData))
}

func TestRestore(t *testing.T) {
	m := newManager(t)
	mustAdd(t, m, "keep", nil)
	mustAdd(t, m, "oops", nil)

	backups, err := m.Store().ListBackups()
	require.NoError(t, err)
	require.NotEmpty(t, backups)

	require.NoError(t, m.Restore(backups[0]))
	all, err := m.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "keep", all[0].Name)
}

func TestConcurrentAdds(t *testing.T) {
	m := newManager(t)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Add(named("t"), nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := m.GetAll()
	require.NoError(t, err)
	require.Len(t, all, n)

	seen := map[int]bool{}
	for _, tk := range all {
		assert.False(t, seen[tk.ID], "duplicate id %d", tk.ID)
		seen[tk.ID] = true
	}
}
