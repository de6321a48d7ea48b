package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "tree"},
	Short:   "List tasks",
	Long: `Lists the task forest as a tree, or as a flat table with --flat.

Filtering by state keeps the ancestors of matching tasks so the tree stays
readable. Tasks in the final state are hidden when the hideCompleted setting
is on; --all shows them anyway.

Use --watch to re-render whenever the data file changes on disk.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringSlice("state", nil, "filter by state (comma-separated)")
	listCmd.Flags().Bool("flat", false, "flat table instead of a tree")
	listCmd.Flags().String("sort", "", "sort field ("+strings.Join(tasklist.SortFields(), ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().BoolP("all", "a", false, "include final-state tasks even when hideCompleted is set")
	listCmd.Flags().BoolP("watch", "w", false, "live-update the list on file changes")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	m, err := openManager()
	if err != nil {
		return err
	}

	opts := tasklist.QueryOptions{}
	opts.States, _ = cmd.Flags().GetStringSlice("state")
	opts.Sort, _ = cmd.Flags().GetString("sort")
	opts.Reverse, _ = cmd.Flags().GetBool("reverse")
	all, _ := cmd.Flags().GetBool("all")
	flat, _ := cmd.Flags().GetBool("flat")
	watch, _ := cmd.Flags().GetBool("watch")

	if !all {
		doc, err := loadSettings(m)
		if err != nil {
			return err
		}
		opts.HideFinal = doc.HideCompleted()
	}

	w := cmd.OutOrStdout()
	render := func() error { return renderList(w, m, opts, flat) }
	if err := render(); err != nil {
		return err
	}
	if !watch {
		return nil
	}

	return watchData(cmd.Context(), m, func() {
		clearScreen(w)
		if err := render(); err != nil {
			printWarning(fmt.Errorf("rendering list: %w", err))
		}
	})
}

func renderList(w io.Writer, m *tasklist.Manager, opts tasklist.QueryOptions, flat bool) error {
	f, err := m.File()
	if err != nil {
		return err
	}
	states := f.Meta.States
	if err := tasklist.ValidateQuery(opts, states); err != nil {
		return err
	}

	format := outputFormat()
	if flat {
		entries := tasklist.Flat(f.Datas, opts, states)
		switch format {
		case output.FormatJSON:
			return output.JSON(w, entries)
		case output.FormatCompact:
			output.FlatCompact(w, entries)
		default:
			output.FlatTable(w, entries, states)
		}
		return nil
	}

	forest := tasklist.Prune(f.Datas, opts, states)
	switch format {
	case output.FormatJSON:
		return output.JSON(w, forest)
	case output.FormatCompact:
		output.TreeCompact(w, forest)
	default:
		output.Tree(w, forest, states)
	}
	return nil
}
