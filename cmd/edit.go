package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

var editCmd = &cobra.Command{
	Use:     "edit ID[,ID,...]",
	Aliases: []string{"update", "set"},
	Short:   "Edit tasks",
	Long: `Updates fields on one or more tasks. Only the flags given are changed.
With --cascade the changes also apply to every descendant.

Batches are all-or-nothing: if any ID is unknown or any value is invalid,
nothing is written.

--if-unmodified-since refuses the edit when the data file was written after
the given RFC 3339 time, for clients that display data before changing it.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	addTaskFlags(editCmd)
	editCmd.Flags().Bool("clear-priority", false, "remove the priority")
	editCmd.Flags().Bool("cascade", false, "apply to every descendant too")
	editCmd.Flags().String("if-unmodified-since", "", "fail if the data file changed after this RFC 3339 time")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args[0])
	if err != nil {
		return err
	}

	fields := fieldsFromFlags(cmd)
	fields.ClearPriority, _ = cmd.Flags().GetBool("clear-priority")
	if fields.ClearPriority && fields.Priority != nil {
		return clierr.New(clierr.InvalidInput, "cannot use --priority and --clear-priority together")
	}
	cascade, _ := cmd.Flags().GetBool("cascade")

	m, err := openManager()
	if err != nil {
		return err
	}
	if m, err = withPrecondition(cmd, m); err != nil {
		return err
	}

	if err := m.Edit(ids, fields, cascade); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return writeResult(w, map[string]any{"status": "updated", "ids": ids, "cascade": cascade}, func() {
		for _, id := range ids {
			output.Messagef(w, "Updated task #%d", id)
		}
	})
}

// withPrecondition applies --if-unmodified-since when the command has it.
func withPrecondition(cmd *cobra.Command, m *tasklist.Manager) (*tasklist.Manager, error) {
	if cmd.Flags().Lookup("if-unmodified-since") == nil {
		return m, nil
	}
	v, _ := cmd.Flags().GetString("if-unmodified-since")
	if v == "" {
		return m, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil, clierr.Newf(clierr.InvalidInput, "invalid --if-unmodified-since %q: expected RFC 3339", v).
			WithDetails(map[string]any{"value": v})
	}
	return m.IfUnmodifiedSince(t), nil
}
