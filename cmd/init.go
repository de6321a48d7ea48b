package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/config"
	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/settings"
	"github.com/tcsenpai/TG-Manager/internal/state"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize storage for a user",
	Long: `Creates the data root, config.yml (if missing), and the user's directory with
an empty tasks file and backup directory. Running it again is harmless: existing
files are never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Int("keep-backups", config.DefaultKeepBackups, "backups to keep per user when creating config.yml (-1 keeps all)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	created := false
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		cfg, initErr := config.Init(path)
		if initErr != nil {
			return initErr
		}
		if cmd.Flags().Changed("keep-backups") {
			keep, _ := cmd.Flags().GetInt("keep-backups")
			if err := cfg.Set("backups.keep", fmt.Sprint(keep)); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
		}
		created = true
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	m := tasklist.New(s)
	if err := m.Initialize(); err != nil {
		return err
	}
	states, err := m.States()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return writeResult(w, map[string]any{
		"status":         "initialized",
		"user":           s.UserID(),
		"config":         cfg.Path(),
		"config_created": created,
		"data":           s.DataPath(),
		"backups":        s.BackupDir(),
		"settings":       settings.PathFor(s),
		"states":         state.Names(states),
	}, func() {
		output.Messagef(w, "Initialized tasks for user %q", s.UserID())
		output.Messagef(w, "  Config:   %s", cfg.Path())
		output.Messagef(w, "  Data:     %s", s.DataPath())
		output.Messagef(w, "  Backups:  %s", s.BackupDir())
		output.Messagef(w, "  States:   %s", strings.Join(state.Names(states), " → "))
	})
}
