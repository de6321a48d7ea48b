package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/task"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Long:  `Displays a single task with its ancestry, subtasks, and markdown description.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	m, err := openManager()
	if err != nil {
		return err
	}
	f, err := m.File()
	if err != nil {
		return err
	}
	t, path := task.FindWithPath(f.Datas, id)
	if t == nil {
		return task.NotFound(id)
	}

	w := cmd.OutOrStdout()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, map[string]any{"task": t, "path": path})
	case output.FormatCompact:
		output.TaskDetailCompact(w, t, path)
	default:
		output.TaskDetail(w, t, path, f.Meta.States)
	}
	return nil
}
