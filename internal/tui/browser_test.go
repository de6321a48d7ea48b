package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/state"
	"github.com/tcsenpai/TG-Manager/internal/store"
	"github.com/tcsenpai/TG-Manager/internal/task"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

func init() { output.DisableColor() }

func strPtr(s string) *string { return &s }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// newBrowser builds a forest of "Parent" (0) with child "Child" (1) and a
// second root "Other" (2).
func newBrowser(t *testing.T, hideFinal bool) (*Browser, *tasklist.Manager) {
	t.Helper()
	s, err := store.New("7", store.Options{Root: t.TempDir()})
	require.NoError(t, err)
	m := tasklist.New(s)

	parent, err := m.Add(task.Fields{Name: strPtr("Parent")}, nil)
	require.NoError(t, err)
	_, err = m.Add(task.Fields{Name: strPtr("Child")}, &parent)
	require.NoError(t, err)
	_, err = m.Add(task.Fields{Name: strPtr("Other")}, nil)
	require.NoError(t, err)

	b := NewBrowser(m, hideFinal)
	b.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return b, m
}

func TestBrowser_RowsAndNavigation(t *testing.T) {
	b, _ := newBrowser(t, false)
	require.Len(t, b.rows, 3)
	assert.Equal(t, 0, b.selected().ID)

	b.Update(runes("j"))
	assert.Equal(t, 1, b.selected().ID)
	assert.Equal(t, 1, b.rows[b.cursor].depth)

	b.Update(tea.KeyMsg{Type: tea.KeyDown})
	b.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, b.selected().ID, "cursor stops at the last row")

	b.Update(runes("k"))
	b.Update(runes("k"))
	b.Update(runes("k"))
	assert.Equal(t, 0, b.selected().ID)
}

func TestBrowser_CollapseExpand(t *testing.T) {
	b, _ := newBrowser(t, false)

	b.Update(runes("h"))
	assert.Len(t, b.rows, 2)
	assert.Contains(t, b.View(), "▸ #0")

	b.Update(runes("l"))
	assert.Len(t, b.rows, 3)

	// On a leaf, collapse jumps to the parent.
	b.Update(runes("j"))
	b.Update(runes("h"))
	assert.Equal(t, 0, b.selected().ID)
}

func TestBrowser_AdvanceAndComplete(t *testing.T) {
	b, m := newBrowser(t, false)

	b.Update(runes("n"))
	got, err := m.Get(0)
	require.NoError(t, err)
	assert.Equal(t, state.CurrentlyDoing, got.State)
	assert.Contains(t, b.notice, "#0")

	b.Update(runes("c"))
	got, err = m.Get(0)
	require.NoError(t, err)
	assert.Equal(t, state.Done, got.State)

	// Already final: the error is shown and nothing changes.
	b.Update(runes("n"))
	require.Error(t, b.err)
	assert.Contains(t, b.View(), "Error:")
}

func TestBrowser_HideFinalKeepsContext(t *testing.T) {
	b, m := newBrowser(t, true)
	_, err := m.CompleteState([]int{2}, false)
	require.NoError(t, err)

	b.Update(ReloadMsg{})
	ids := make([]int, 0, len(b.rows))
	for _, r := range b.rows {
		ids = append(ids, r.task.ID)
	}
	assert.Equal(t, []int{0, 1}, ids)

	b.Update(runes("H"))
	assert.Len(t, b.rows, 3)
}

func TestBrowser_DeleteConfirm(t *testing.T) {
	b, m := newBrowser(t, false)

	b.Update(runes("d"))
	assert.Equal(t, viewConfirmDelete, b.view)
	assert.Contains(t, b.View(), "and its 1 subtask(s)")

	b.Update(runes("n"))
	assert.Equal(t, viewTree, b.view)
	all, err := m.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	b.Update(runes("d"))
	b.Update(runes("y"))
	assert.Equal(t, viewTree, b.view)
	all, err = m.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Other", all[0].Name)
	assert.Equal(t, 2, b.selected().ID)
}

func TestBrowser_ReloadKeepsSelection(t *testing.T) {
	b, m := newBrowser(t, false)
	b.Update(runes("j"))
	b.Update(runes("j"))
	require.Equal(t, 2, b.selected().ID)

	// Another process inserts a task before the selected one.
	zero := 0
	_, err := m.Add(task.Fields{Name: strPtr("Inserted")}, &zero)
	require.NoError(t, err)

	b.Update(ReloadMsg{})
	assert.Equal(t, 2, b.selected().ID)
	assert.Len(t, b.rows, 4)
}

func TestBrowser_DetailPane(t *testing.T) {
	b, m := newBrowser(t, false)
	require.NoError(t, m.Edit([]int{0}, task.Fields{Description: strPtr("ship it")}, false))
	b.Update(ReloadMsg{})

	b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, b.showDetail)
	assert.Contains(t, b.View(), "ship it")

	b.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, b.showDetail)
}

func TestBrowser_Quit(t *testing.T) {
	b, _ := newBrowser(t, false)
	_, cmd := b.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBrowser_WatchDir(t *testing.T) {
	b, m := newBrowser(t, false)
	dir, names := b.WatchDir()
	assert.Equal(t, m.Store().Dir(), dir)
	assert.Equal(t, []string{"tasks.json"}, names)
}
