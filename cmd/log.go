package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/output"
)

var logCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"activity", "history"},
	Short:   "Show recent changes",
	Long:    `Prints the most recent entries of the user's activity log, oldest first.`,
	Args:    cobra.NoArgs,
	RunE:    runLog,
}

func init() {
	logCmd.Flags().IntP("limit", "n", 20, "number of entries to show") //nolint:mnd // default page
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	m, err := openManager()
	if err != nil {
		return err
	}
	entries, err := m.Activity().Tail(limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return writeResult(w, entries, func() {
		output.ActivityTable(w, entries)
	})
}
