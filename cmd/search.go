package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/output"
)

var searchCmd = &cobra.Command{
	Use:     "search QUERY...",
	Aliases: []string{"find"},
	Short:   "Search tasks by name and description",
	Long: `Finds tasks where any word of the query occurs in the name or description,
ignoring case. Results keep tree order and show where each hit sits.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Bool("no-descriptions", false, "match names only")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	noDesc, _ := cmd.Flags().GetBool("no-descriptions")

	m, err := openManager()
	if err != nil {
		return err
	}
	results, err := m.Search(strings.Join(args, " "), !noDesc)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, results)
	case output.FormatCompact:
		output.SearchCompact(w, results)
	default:
		states, err := m.States()
		if err != nil {
			return err
		}
		output.SearchTable(w, results, states)
	}
	return nil
}
