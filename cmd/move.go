package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/output"
)

var moveCmd = &cobra.Command{
	Use:     "move ID[,ID,...]",
	Aliases: []string{"mv"},
	Short:   "Move tasks under another parent",
	Long: `Relocates tasks, with their subtasks, under --parent. Without --parent (or
with --top) the tasks move to the top level. A task cannot be moved into its own
subtree.`,
	Args: cobra.ExactArgs(1),
	RunE: runMove,
}

func init() {
	moveCmd.Flags().Int("parent", 0, "new parent task ID")
	moveCmd.Flags().Bool("top", false, "move to the top level")
	moveCmd.MarkFlagsMutuallyExclusive("parent", "top")
	moveCmd.Flags().String("if-unmodified-since", "", "fail if the data file changed after this RFC 3339 time")
	rootCmd.AddCommand(moveCmd)
}

func runMove(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args[0])
	if err != nil {
		return err
	}
	var parent *int
	if cmd.Flags().Changed("parent") {
		v, _ := cmd.Flags().GetInt("parent")
		parent = &v
	}

	m, err := openManager()
	if err != nil {
		return err
	}
	if m, err = withPrecondition(cmd, m); err != nil {
		return err
	}
	if err := m.Move(ids, parent); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return writeResult(w, map[string]any{"status": "moved", "ids": ids, "parent": parent}, func() {
		target := "the top level"
		if parent != nil {
			target = fmt.Sprintf("#%d", *parent)
		}
		output.Messagef(w, "Moved %s to %s", describeIDs(ids), target)
	})
}
