package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/activity"
	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/settings"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print storage locations",
	Long: `Prints where the selected user's files live, for scripts that read or copy
them directly.`,
	Args: cobra.NoArgs,
	RunE: runPaths,
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}

func runPaths(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}

	paths := map[string]any{
		"config":   cfg.Path(),
		"user_dir": s.Dir(),
		"data":     s.DataPath(),
		"backups":  s.BackupDir(),
		"settings": settings.PathFor(s),
		"activity": s.Path(activity.FileName),
	}

	w := cmd.OutOrStdout()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, paths)
	case output.FormatCompact:
		output.KeyValues(w, paths)
	default:
		for _, k := range []string{"config", "user_dir", "data", "backups", "settings", "activity"} {
			output.Messagef(w, "%-9s %s", k+":", paths[k])
		}
	}
	return nil
}
