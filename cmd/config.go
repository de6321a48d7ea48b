package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/config"
	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/settings"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify configuration",
	Long: `Shows application settings from config.yml (data_dir, backups.keep, ...)
together with the selected user's settings (hideCompleted), gets one key, or
sets a writable value. User settings are stored in the user's settings.json.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configEnv holds both configuration layers for accessors.
type configEnv struct {
	cfg *config.Config
	doc *settings.Document
}

// configAccessor describes how to get and set a config key, and which layer
// it is saved to.
type configAccessor struct {
	get  func(*configEnv) (any, error)
	set  func(*configEnv, string) error
	save func(*configEnv) error
}

func (a configAccessor) writable() bool { return a.set != nil }

func configAccessors() map[string]configAccessor {
	accessors := make(map[string]configAccessor)
	for _, key := range config.Keys() {
		acc := configAccessor{
			get: func(e *configEnv) (any, error) { return e.cfg.Get(key) },
		}
		if key != "version" {
			acc.set = func(e *configEnv, v string) error { return e.cfg.Set(key, v) }
			acc.save = func(e *configEnv) error { return e.cfg.Save() }
		}
		accessors[key] = acc
	}
	for _, key := range settings.Keys() {
		accessors[key] = configAccessor{
			get:  func(e *configEnv) (any, error) { return e.doc.Get(key) },
			set:  func(e *configEnv, v string) error { return e.doc.Set(key, v) },
			save: func(e *configEnv) error { return e.doc.Save(time.Now()) },
		}
	}
	return accessors
}

// allConfigKeys returns config keys in display order: application keys
// first, then user settings.
func allConfigKeys() []string {
	return append(config.Keys(), settings.Keys()...)
}

func loadConfigEnv() (*configEnv, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	doc, err := loadSettings(tasklist.New(s))
	if err != nil {
		return nil, err
	}
	return &configEnv{cfg: cfg, doc: doc}, nil
}

func lookupAccessor(key string) (configAccessor, error) {
	acc, ok := configAccessors()[key]
	if !ok {
		keys := allConfigKeys()
		sort.Strings(keys)
		return configAccessor{}, clierr.Newf(clierr.InvalidInput, "unknown config key %q", key).
			WithDetails(map[string]any{"key": key, "allowed": keys})
	}
	return acc, nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	env, err := loadConfigEnv()
	if err != nil {
		return err
	}

	accessors := configAccessors()
	values := make(map[string]any, len(accessors))
	for _, key := range allConfigKeys() {
		v, err := accessors[key].get(env)
		if err != nil {
			return err
		}
		values[key] = v
	}

	w := cmd.OutOrStdout()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, values)
	case output.FormatCompact:
		output.KeyValues(w, values)
	default:
		for _, key := range allConfigKeys() {
			fmt.Fprintf(w, "%-20s %s\n", key, formatConfigValue(values[key]))
		}
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	acc, err := lookupAccessor(args[0])
	if err != nil {
		return err
	}
	env, err := loadConfigEnv()
	if err != nil {
		return err
	}
	val, err := acc.get(env)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	return writeResult(w, val, func() {
		fmt.Fprintln(w, formatConfigValue(val))
	})
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	acc, err := lookupAccessor(key)
	if err != nil {
		return err
	}
	if !acc.writable() {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	env, err := loadConfigEnv()
	if err != nil {
		return err
	}
	if err := acc.set(env, value); err != nil {
		return err
	}
	if err := acc.save(env); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	val, err := acc.get(env)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	return writeResult(w, map[string]any{"key": key, "value": val}, func() {
		output.Messagef(w, "Set %s = %s", key, formatConfigValue(val))
	})
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case nil:
		return "--"
	case string:
		if v == "" {
			return "--"
		}
		return v
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}
