package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/tui"
	"github.com/tcsenpai/TG-Manager/internal/watcher"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive task browser",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	m, err := openManager()
	if err != nil {
		return err
	}
	if err := m.Initialize(); err != nil {
		return err
	}
	doc, err := loadSettings(m)
	if err != nil {
		return err
	}

	model := tui.NewBrowser(m, doc.HideCompleted())
	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go startTUIWatcher(ctx, model, p)

	_, err = p.Run()
	return err
}

func startTUIWatcher(ctx context.Context, model *tui.Browser, p *tea.Program) {
	dir, names := model.WatchDir()
	w, err := watcher.New(dir, names, func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		return // non-fatal: TUI works without live refresh
	}
	defer w.Close()
	w.Run(ctx, nil)
}
