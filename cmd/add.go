package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/task"
)

var addCmd = &cobra.Command{
	Use:     "add [NAME]",
	Aliases: []string{"create", "new"},
	Short:   "Add a task",
	Long: `Adds a task at the top level, or under --parent. The ID is the smallest
non-negative integer not in use unless --id is given.

The name can be given as a positional argument or via --name.
The description is rendered as markdown by show and the browser.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addTaskFlags(addCmd)
	addCmd.Flags().Int("parent", 0, "parent task ID (default: top level)")
	addCmd.Flags().Int("id", 0, "explicit task ID (fails if taken)")
	rootCmd.AddCommand(addCmd)
}

// addTaskFlags registers the field flags shared by add and edit.
func addTaskFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "task name")
	cmd.Flags().String("description", "", "task description (markdown)")
	cmd.Flags().String("state", "", "task state")
	cmd.Flags().Int("priority", 0, "task priority (lower sorts first)")
	cmd.Flags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "desc", "body":
			name = "description"
		case "status":
			name = "state"
		case "title":
			name = "name"
		}
		return pflag.NormalizedName(name)
	})
}

// fieldsFromFlags collects the field flags that were set on the command line.
func fieldsFromFlags(cmd *cobra.Command) task.Fields {
	var f task.Fields
	if cmd.Flags().Changed("name") {
		v, _ := cmd.Flags().GetString("name")
		f.Name = &v
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		f.Description = &v
	}
	if cmd.Flags().Changed("state") {
		v, _ := cmd.Flags().GetString("state")
		f.State = &v
	}
	if cmd.Flags().Changed("priority") {
		v, _ := cmd.Flags().GetInt("priority")
		f.Priority = &v
	}
	return f
}

func runAdd(cmd *cobra.Command, args []string) error {
	fields := fieldsFromFlags(cmd)
	if len(args) > 0 {
		if fields.Name != nil {
			return clierr.New(clierr.InvalidInput,
				"name provided both as argument and --name flag; use one or the other")
		}
		fields.Name = &args[0]
	}
	if fields.Name == nil || *fields.Name == "" {
		return clierr.New(clierr.InvalidInput, "name is required: provide it as an argument or with --name")
	}

	if cmd.Flags().Changed("id") {
		v, _ := cmd.Flags().GetInt("id")
		if v < 0 {
			return clierr.Newf(clierr.InvalidTaskID, "task ID must be non-negative, got %d", v).
				WithDetails(map[string]any{"id": v})
		}
		fields.ID = &v
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
	id, err := m.Add(fields, parent)
	if err != nil {
		return err
	}
	t, err := m.Get(id)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return writeResult(w, t, func() {
		if parent != nil {
			output.Messagef(w, "Added task #%d under #%d: %s", t.ID, *parent, t.Name)
		} else {
			output.Messagef(w, "Added task #%d: %s", t.ID, t.Name)
		}
		output.Messagef(w, "  State: %s | Created: %s", t.State, t.Timestamp)
	})
}
