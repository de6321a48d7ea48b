package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"summary"},
	Short:   "Count tasks per state",
	Long: `Counts every task, subtasks included, by state. Every configured state is
listed even at zero.

Use --watch to keep the counts live-updating. Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolP("watch", "w", false, "live-update the counts on file changes")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	m, err := openManager()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if err := renderStats(w, m); err != nil {
		return err
	}
	if watch, _ := cmd.Flags().GetBool("watch"); !watch {
		return nil
	}

	return watchData(cmd.Context(), m, func() {
		clearScreen(w)
		if err := renderStats(w, m); err != nil {
			printWarning(fmt.Errorf("rendering stats: %w", err))
		}
	})
}

func renderStats(w io.Writer, m *tasklist.Manager) error {
	stats, err := m.Stats()
	if err != nil {
		return err
	}

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, stats)
	case output.FormatCompact:
		states, err := m.States()
		if err != nil {
			return err
		}
		output.StatsCompact(w, stats, states)
	default:
		states, err := m.States()
		if err != nil {
			return err
		}
		output.StatsTable(w, stats, states)
	}
	return nil
}
