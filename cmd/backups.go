package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/output"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List backups, newest first",
	Long: `Lists the timestamped copies of the data file taken before each save.
Retention is controlled by backups.keep in config.yml.`,
	Args: cobra.NoArgs,
	RunE: runBackups,
}

var restoreCmd = &cobra.Command{
	Use:   "restore BACKUP",
	Short: "Replace the data file with a backup",
	Long: `Restores the named backup (as listed by tgm backups). The current data file
is backed up first, so a restore can itself be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(restoreCmd)
}

func runBackups(cmd *cobra.Command, _ []string) error {
	m, err := openManager()
	if err != nil {
		return err
	}
	names, err := m.Store().ListBackups()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return writeResult(w, map[string]any{"dir": m.Store().BackupDir(), "backups": names}, func() {
		output.BackupList(w, names)
	})
}

func runRestore(cmd *cobra.Command, args []string) error {
	m, err := openManager()
	if err != nil {
		return err
	}
	if err := m.Restore(args[0]); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return writeResult(w, map[string]any{"status": "restored", "backup": args[0]}, func() {
		output.Messagef(w, "Restored %s", args[0])
	})
}
