// Package cmd implements the tgm CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/config"
	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/settings"
	"github.com/tcsenpai/TG-Manager/internal/store"
	"github.com/tcsenpai/TG-Manager/internal/task"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON    bool
	flagCompact bool
	flagDir     string
	flagConfig  string
	flagUser    string
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "tgm",
	Short: "Hierarchical task manager with JSON storage",
	Long: `tgm keeps a tree of tasks per user in a single JSON file. Every write is
atomic and preceded by a timestamped backup of the previous file.

Run tgm without a subcommand to open the interactive browser.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if flagNoColor || os.Getenv("NO_COLOR") != "" {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "data root directory (overrides data_dir)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config.yml")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "user whose tasks to operate on")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	var cliErr *clierr.Error
	isCLIErr := errors.As(err, &cliErr)

	if outputFormat() == output.FormatJSON {
		if isCLIErr {
			output.JSONError(os.Stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			os.Exit(cliErr.ExitCode())
		}
		output.JSONError(os.Stdout, clierr.InternalError, err.Error(), nil)
		os.Exit(2) //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	if isCLIErr {
		os.Exit(cliErr.ExitCode())
	}
	os.Exit(1)
}

// configPath returns the --config flag, or config.yml in the data root.
func configPath() (string, error) {
	if flagConfig != "" {
		return flagConfig, nil
	}
	root := flagDir
	if root == "" {
		var err error
		if root, err = config.DefaultRoot(); err != nil {
			return "", err
		}
	}
	return filepath.Join(root, config.ConfigFileName), nil
}

// loadConfig loads the application config. --dir takes precedence over the
// configured data_dir.
func loadConfig() (*config.Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagDir != "" {
		cfg.DataDir = flagDir
	}
	return cfg, nil
}

// openStore opens the store of the selected user.
func openStore(cfg *config.Config) (*store.Store, error) {
	opts := cfg.StoreOptions()
	opts.Warn = printWarning
	return store.New(cfg.User(flagUser), opts)
}

// openManager loads the config and returns a task manager for the selected
// user.
func openManager() (*tasklist.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return tasklist.New(s), nil
}

// loadSettings reads the user's settings document.
func loadSettings(m *tasklist.Manager) (*settings.Document, error) {
	return settings.Load(settings.PathFor(m.Store()))
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagCompact)
}

// printWarning writes a non-fatal problem to stderr.
func printWarning(err error) {
	fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
}

// parseIDs parses a comma-separated list of task IDs.
func parseIDs(arg string) ([]int, error) {
	return task.ParseIDs(arg)
}

// parseID parses a single task ID argument.
func parseID(arg string) (int, error) {
	ids, err := task.ParseIDs(arg)
	if err != nil {
		return 0, err
	}
	if len(ids) != 1 {
		return 0, task.ValidateTaskID(arg)
	}
	return ids[0], nil
}

// writeResult prints v as JSON in JSON mode, or calls human otherwise.
func writeResult(w io.Writer, v any, human func()) error {
	if outputFormat() == output.FormatJSON {
		return output.JSON(w, v)
	}
	human()
	return nil
}
