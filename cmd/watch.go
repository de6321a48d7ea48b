package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
	"github.com/tcsenpai/TG-Manager/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report changes to the data file",
	Long: `Prints a line every time the user's data file changes on disk, whether the
change came from tgm or another client sharing the directory. With --json each
line is a JSON object carrying the new modification time and task count.
Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	m, err := openManager()
	if err != nil {
		return err
	}
	if err := m.Initialize(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(os.Stderr, "Watching %s... (Ctrl+C to stop)\n", m.Store().DataPath())
	return watchData(cmd.Context(), m, func() {
		if err := reportChange(w, m); err != nil {
			printWarning(err)
		}
	})
}

// changeEvent is one line of watch output.
type changeEvent struct {
	Path     string    `json:"path"`
	Modified time.Time `json:"modified"`
	Tasks    int       `json:"tasks"`
}

func reportChange(w io.Writer, m *tasklist.Manager) error {
	mod, err := m.Store().LastModified()
	if err != nil {
		return err
	}
	ev := changeEvent{Path: m.Store().DataPath(), Modified: mod}

	stats, err := m.Stats()
	if err != nil {
		printWarning(err)
	} else {
		ev.Tasks = stats[tasklist.TotalKey]
	}

	if outputFormat() == output.FormatJSON {
		return output.JSONLine(w, ev)
	}
	output.Messagef(w, "%s  %s changed (%d tasks)",
		mod.Local().Format("15:04:05"), filepath.Base(ev.Path), ev.Tasks)
	return nil
}

// watchData runs onChange after every change to the data file until ctx is
// done or the process receives SIGINT/SIGTERM.
func watchData(ctx context.Context, m *tasklist.Manager, onChange func()) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := m.Store()
	w, err := watcher.New(s.Dir(), []string{filepath.Base(s.DataPath())}, onChange)
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer w.Close()

	w.Run(ctx, func(watchErr error) {
		printWarning(fmt.Errorf("file watcher: %w", watchErr))
	})
	return nil
}

// clearScreen sends ANSI escape codes to clear the terminal and move the
// cursor to the top-left corner.
func clearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[2J\033[H")
}
