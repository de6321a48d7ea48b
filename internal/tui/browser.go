// Package tui implements an interactive tree browser for a user's tasks.
package tui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/state"
	"github.com/tcsenpai/TG-Manager/internal/task"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

// view represents the current screen state.
type view int

const (
	viewTree view = iota
	viewConfirmDelete
)

const (
	headerChrome   = 1
	statusChrome   = 2 // blank line + help line
	detailFraction = 2 // details take at most 1/N of the height
)

// row is one visible line of the tree.
type row struct {
	task  *task.Task
	depth int
	path  []int
}

// Browser is the top-level bubbletea model.
type Browser struct {
	mgr    *tasklist.Manager
	states []state.TaskState
	forest []*task.Task
	rows   []row

	collapsed map[int]bool
	hideFinal bool
	cursor    int
	offset    int

	view       view
	showDetail bool
	detail     viewport.Model
	help       help.Model
	keys       keyMap

	width  int
	height int
	err    error
	notice string

	deleteID   int
	deleteName string
}

// NewBrowser creates a Browser over mgr's forest. hideFinal starts with
// final-state tasks hidden.
func NewBrowser(mgr *tasklist.Manager, hideFinal bool) *Browser {
	b := &Browser{
		mgr:       mgr,
		collapsed: map[int]bool{},
		hideFinal: hideFinal,
		detail:    viewport.New(0, 0),
		help:      help.New(),
		keys:      defaultKeyMap(),
	}
	b.reload()
	return b
}

// WatchDir returns the directory and file names the TUI should watch.
func (b *Browser) WatchDir() (string, []string) {
	s := b.mgr.Store()
	return s.Dir(), []string{filepath.Base(s.DataPath())}
}

// Init implements tea.Model.
func (b *Browser) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(msg)
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.help.Width = msg.Width
		b.layout()
		return b, nil
	case ReloadMsg:
		b.reload()
		return b, nil
	}
	return b, nil
}

// View implements tea.Model.
func (b *Browser) View() string {
	if b.width == 0 {
		return "Loading..."
	}
	if b.view == viewConfirmDelete {
		return b.viewDeleteConfirm()
	}
	return b.viewTree()
}

func (b *Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return b, tea.Quit
	}
	if b.view == viewConfirmDelete {
		return b.handleDeleteKey(msg)
	}

	b.notice = ""
	switch {
	case key.Matches(msg, b.keys.Quit):
		return b, tea.Quit
	case key.Matches(msg, b.keys.Up):
		b.move(-1)
	case key.Matches(msg, b.keys.Down):
		b.move(1)
	case key.Matches(msg, b.keys.Collapse):
		b.collapse()
	case key.Matches(msg, b.keys.Expand):
		if t := b.selected(); t != nil && b.collapsed[t.ID] {
			delete(b.collapsed, t.ID)
			b.rebuild()
		}
	case key.Matches(msg, b.keys.Detail):
		b.showDetail = !b.showDetail
		b.layout()
	case key.Matches(msg, b.keys.PageUp), key.Matches(msg, b.keys.PageDown):
		var cmd tea.Cmd
		b.detail, cmd = b.detail.Update(msg)
		return b, cmd
	case key.Matches(msg, b.keys.Next):
		b.advance()
	case key.Matches(msg, b.keys.Complete):
		b.complete()
	case key.Matches(msg, b.keys.Delete):
		if t := b.selected(); t != nil {
			b.deleteID = t.ID
			b.deleteName = t.DisplayName()
			b.view = viewConfirmDelete
		}
	case key.Matches(msg, b.keys.Hide):
		b.hideFinal = !b.hideFinal
		b.reload()
	case key.Matches(msg, b.keys.Reload):
		b.reload()
	case key.Matches(msg, b.keys.Help):
		b.help.ShowAll = !b.help.ShowAll
		b.layout()
	}
	return b, nil
}

func (b *Browser) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		n, err := b.mgr.Delete([]int{b.deleteID})
		if err != nil {
			b.err = err
		} else {
			b.notice = fmt.Sprintf("Deleted #%d (%d task(s))", b.deleteID, n)
		}
		b.view = viewTree
		b.reload()
	case "n", "N", "esc", "q":
		b.view = viewTree
	}
	return b, nil
}

func (b *Browser) advance() {
	t := b.selected()
	if t == nil {
		return
	}
	tr, err := b.mgr.AdvanceState([]int{t.ID}, false)
	if err != nil {
		b.err = err
		return
	}
	b.notice = fmt.Sprintf("#%d: %s → %s", tr[0].ID, tr[0].From, tr[0].To)
	b.reload()
}

func (b *Browser) complete() {
	t := b.selected()
	if t == nil {
		return
	}
	tr, err := b.mgr.CompleteState([]int{t.ID}, false)
	if err != nil {
		b.err = err
		return
	}
	b.notice = fmt.Sprintf("#%d: %s", tr[0].ID, tr[0].To)
	b.reload()
}

// collapse folds the selected task, or jumps to its parent when it has no
// visible children.
func (b *Browser) collapse() {
	if b.cursor >= len(b.rows) {
		return
	}
	r := b.rows[b.cursor]
	if len(r.task.Subtasks) > 0 && !b.collapsed[r.task.ID] {
		b.collapsed[r.task.ID] = true
		b.rebuild()
		return
	}
	if len(r.path) > 0 {
		b.selectID(r.path[len(r.path)-1])
	}
}

// reload re-reads the forest from disk and keeps the selection on the same
// task when it still exists.
func (b *Browser) reload() {
	f, err := b.mgr.File()
	if err != nil {
		b.err = err
		return
	}
	b.err = nil
	b.states = f.Meta.States
	b.forest = f.Datas
	if b.hideFinal {
		b.forest = tasklist.Prune(f.Datas, tasklist.QueryOptions{HideFinal: true}, b.states)
	}
	b.rebuild()
}

func (b *Browser) rebuild() {
	selectedID := -1
	if t := b.selected(); t != nil {
		selectedID = t.ID
	}

	b.rows = b.rows[:0]
	var walk func(nodes []*task.Task, depth int, path []int)
	walk = func(nodes []*task.Task, depth int, path []int) {
		for _, t := range nodes {
			b.rows = append(b.rows, row{task: t, depth: depth, path: append([]int{}, path...)})
			if !b.collapsed[t.ID] {
				walk(t.Subtasks, depth+1, append(path, t.ID))
			}
		}
	}
	walk(b.forest, 0, nil)

	if selectedID >= 0 {
		b.selectID(selectedID)
	}
	b.clamp()
	b.refreshDetail()
}

func (b *Browser) selectID(id int) {
	for i, r := range b.rows {
		if r.task.ID == id {
			b.cursor = i
			b.ensureVisible()
			b.refreshDetail()
			return
		}
	}
}

func (b *Browser) selected() *task.Task {
	if b.cursor >= 0 && b.cursor < len(b.rows) {
		return b.rows[b.cursor].task
	}
	return nil
}

func (b *Browser) move(delta int) {
	b.cursor += delta
	b.clamp()
	b.refreshDetail()
}

func (b *Browser) clamp() {
	if b.cursor >= len(b.rows) {
		b.cursor = len(b.rows) - 1
	}
	if b.cursor < 0 {
		b.cursor = 0
	}
	b.ensureVisible()
}

func (b *Browser) listHeight() int {
	h := b.height - headerChrome - statusChrome
	if b.err != nil || b.notice != "" {
		h--
	}
	if b.showDetail {
		h -= b.detail.Height + 1
	}
	if b.help.ShowAll {
		h -= len(b.keys.FullHelp()[0]) - 1
	}
	return max(h, 1)
}

func (b *Browser) ensureVisible() {
	h := b.listHeight()
	switch {
	case b.cursor < b.offset:
		b.offset = b.cursor
	case b.cursor >= b.offset+h:
		b.offset = b.cursor - h + 1
	}
}

func (b *Browser) layout() {
	b.detail.Width = b.width
	b.detail.Height = 0
	if b.showDetail {
		b.detail.Height = max(b.height/detailFraction-1, 1)
	}
	b.ensureVisible()
	b.refreshDetail()
}

func (b *Browser) refreshDetail() {
	if !b.showDetail {
		return
	}
	t := b.selected()
	if t == nil {
		b.detail.SetContent(dimStyle.Render("No task selected."))
		return
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s", t.ID, t.DisplayName())))
	sb.WriteString("\n")
	sb.WriteString(output.StateLabel(t.State, b.states))
	if t.Priority != nil {
		sb.WriteString(dimStyle.Render("  priority " + strconv.Itoa(*t.Priority)))
	}
	if t.Timestamp != "" {
		sb.WriteString(dimStyle.Render("  created " + t.Timestamp))
	}
	sb.WriteString("\n")
	if t.Description != "" {
		sb.WriteString(output.Markdown(t.Description, b.width-4)) //nolint:mnd // glamour margins
	} else {
		sb.WriteString(dimStyle.Render("No description."))
	}
	b.detail.SetContent(sb.String())
	b.detail.GotoTop()
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a refresh.
type ReloadMsg struct{}

// --- Styles ---

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237"))

	titleStyle = lipgloss.NewStyle().Bold(true)

	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2) //nolint:mnd // dialog padding
)

// --- View rendering ---

func (b *Browser) viewTree() string {
	var sections []string

	title := fmt.Sprintf("tgm · %s", b.mgr.Store().UserID())
	if b.hideFinal {
		title += " · hiding " + state.Final(b.states)
	}
	sections = append(sections, headerStyle.Render(title))

	h := b.listHeight()
	lines := make([]string, 0, h)
	if len(b.rows) == 0 {
		lines = append(lines, dimStyle.Render("No tasks. Add one with: tgm add NAME"))
	}
	for i := b.offset; i < len(b.rows) && i < b.offset+h; i++ {
		lines = append(lines, b.renderRow(i))
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	sections = append(sections, strings.Join(lines, "\n"))

	if b.showDetail {
		sections = append(sections, separatorStyle.Render(strings.Repeat("─", max(b.width, 1))), b.detail.View())
	}

	switch {
	case b.err != nil:
		sections = append(sections, errorStyle.Render("Error: "+b.err.Error()))
	case b.notice != "":
		sections = append(sections, noticeStyle.Render(b.notice))
	}

	sections = append(sections, "", b.help.View(b.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (b *Browser) renderRow(i int) string {
	r := b.rows[i]
	t := r.task

	marker := "  "
	switch {
	case len(t.Subtasks) > 0 && b.collapsed[t.ID]:
		marker = "▸ "
	case len(t.Subtasks) > 0:
		marker = "▾ "
	}

	line := strings.Repeat("  ", r.depth) + marker +
		"#" + strconv.Itoa(t.ID) + " " +
		output.StateLabel(t.State, b.states) + " " +
		t.DisplayName()
	if t.Priority != nil {
		line += dimStyle.Render(" p:" + strconv.Itoa(*t.Priority))
	}
	if b.width > 0 && lipgloss.Width(line) > b.width {
		line = truncate(line, b.width)
	}
	if i == b.cursor {
		return cursorStyle.Render(line)
	}
	return line
}

func (b *Browser) viewDeleteConfirm() string {
	n := 1
	if t := task.Find(b.forest, b.deleteID); t != nil {
		n += len(t.Descendants())
	}
	msg := fmt.Sprintf("Delete task #%d %q", b.deleteID, b.deleteName)
	if n > 1 {
		msg += fmt.Sprintf(" and its %d subtask(s)", n-1)
	}
	msg += "?\n\n" + dimStyle.Render("y to confirm · n to cancel")

	dialog := dialogStyle.Render(msg)
	return lipgloss.Place(b.width, b.height, lipgloss.Center, lipgloss.Center, dialog)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
