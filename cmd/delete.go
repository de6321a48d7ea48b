package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/task"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID[,ID,...]",
	Aliases: []string{"rm"},
	Short:   "Delete tasks and their subtasks",
	Long: `Removes each task together with its whole subtree. The previous file is kept
as a backup, so a mistaken delete can be undone with tgm restore.

Prompts for confirmation when stdin is a terminal; use --yes otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	deleteCmd.Flags().String("if-unmodified-since", "", "fail if the data file changed after this RFC 3339 time")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args[0])
	if err != nil {
		return err
	}
	yes, _ := cmd.Flags().GetBool("yes")

	m, err := openManager()
	if err != nil {
		return err
	}
	if m, err = withPrecondition(cmd, m); err != nil {
		return err
	}

	if !yes {
		ok, err := confirmDelete(m, ids)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	removed, err := m.Delete(ids)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return writeResult(w, map[string]any{"status": "deleted", "ids": ids, "removed": removed}, func() {
		output.Messagef(w, "Deleted %d task(s)", removed)
	})
}

// confirmDelete asks on stderr before deleting. It fails when stdin is not a
// terminal.
func confirmDelete(m *tasklist.Manager, ids []int) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, clierr.New(clierr.ConfirmationReq,
			"cannot prompt for confirmation (not a terminal); use --yes")
	}

	forest, err := m.GetAll()
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		t := task.Find(forest, id)
		if t == nil {
			return false, task.NotFound(id)
		}
		if n := len(t.Descendants()); n > 0 {
			fmt.Fprintf(os.Stderr, "Task #%d %q has %d subtask(s) that will also be deleted.\n", t.ID, t.DisplayName(), n)
		}
	}

	fmt.Fprintf(os.Stderr, "Delete %s? [y/N] ", describeIDs(ids))
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}

func describeIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("#%d", id)
	}
	if len(ids) == 1 {
		return "task " + parts[0]
	}
	return "tasks " + strings.Join(parts, ", ")
}
