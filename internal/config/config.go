package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/store"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// ErrInvalid marks configuration validation failures.
var ErrInvalid = errors.New("invalid config")

// Config is the application configuration stored in config.yml.
type Config struct {
	Version     int           `yaml:"version" mapstructure:"version"`
	DataDir     string        `yaml:"data_dir" mapstructure:"data_dir"`
	DefaultUser string        `yaml:"default_user,omitempty" mapstructure:"default_user"`
	DataFile    string        `yaml:"data_file" mapstructure:"data_file"`
	Backups     BackupsConfig `yaml:"backups" mapstructure:"backups"`

	// LegacyKeepBackups is the version 1 spelling of backups.keep.
	LegacyKeepBackups int `yaml:"keep_backups,omitempty" mapstructure:"keep_backups"`

	// path is where the config was loaded from (not serialized).
	path string `yaml:"-"`
}

// BackupsConfig controls backup-on-write.
type BackupsConfig struct {
	// Keep is the number of backups retained after each save; KeepAll
	// disables pruning.
	Keep    int    `yaml:"keep" mapstructure:"keep"`
	DirName string `yaml:"dir_name" mapstructure:"dir_name"`
}

// DefaultRoot returns the platform data directory for tgm:
// $XDG_DATA_HOME/tgm, falling back to ~/.local/share/tgm.
func DefaultRoot() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, AppDir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", AppDir), nil
}

// NewDefault returns a Config rooted at dataDir with default values.
func NewDefault(dataDir string) *Config {
	return &Config{
		Version:  CurrentVersion,
		DataDir:  dataDir,
		DataFile: DefaultDataFile,
		Backups: BackupsConfig{
			Keep:    DefaultKeepBackups,
			DirName: DefaultBackupDir,
		},
		path: filepath.Join(dataDir, ConfigFileName),
	}
}

// setDefaults registers every key so that environment overrides apply even
// when the file does not mention them.
func setDefaults(v *viper.Viper, dataDir string) {
	v.SetDefault("version", CurrentVersion)
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("default_user", "")
	v.SetDefault("data_file", DefaultDataFile)
	v.SetDefault("backups.keep", DefaultKeepBackups)
	v.SetDefault("backups.dir_name", DefaultBackupDir)
	v.SetDefault("keep_backups", 0)
}

// Load reads the config at path. A missing file yields defaults with
// data_dir set to the file's directory. TGM_* environment variables override
// file values (TGM_DATA_DIR, TGM_BACKUPS_KEEP, ...). Old versions are
// migrated and written back.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	v := viper.New()
	setDefaults(v, filepath.Dir(absPath))
	v.SetConfigFile(absPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	exists := true
	if _, err := os.Stat(absPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		exists = false
	}
	if exists {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.path = absPath

	oldVersion := cfg.Version
	if err := migrate(cfg); err != nil {
		return nil, err
	}
	if exists && cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init writes a default config at path unless one already exists, and
// returns the effective config.
func Init(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolving path: %w", err)
		}
		if err := NewDefault(filepath.Dir(absPath)).Save(); err != nil {
			return nil, fmt.Errorf("writing config: %w", err)
		}
	}
	return Load(path)
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string { return c.path }

// SetPath changes where Save writes.
func (c *Config) SetPath(path string) { c.path = path }

// Save writes the config as YAML.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), dirMode); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(c.path, data, fileMode)
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is required", ErrInvalid)
	}
	if err := validateName("data_file", c.DataFile); err != nil {
		return err
	}
	if err := validateName("backups.dir_name", c.Backups.DirName); err != nil {
		return err
	}
	if c.Backups.DirName == c.DataFile {
		return fmt.Errorf("%w: backups.dir_name must differ from data_file", ErrInvalid)
	}
	if c.Backups.Keep < 1 && c.Backups.Keep != KeepAll {
		return fmt.Errorf("%w: backups.keep must be >= 1 or %d to keep all", ErrInvalid, KeepAll)
	}
	if c.DefaultUser != "" {
		if err := store.ValidateUserID(c.DefaultUser); err != nil {
			return fmt.Errorf("%w: default_user: %w", ErrInvalid, err)
		}
	}
	return nil
}

func validateName(key, name string) error {
	if name == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, key)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %s must be a plain file name, got %q", ErrInvalid, key, name)
	}
	return nil
}

// User returns the user to operate on: the explicit flag value if set,
// otherwise default_user, otherwise DefaultUser.
func (c *Config) User(flag string) string {
	switch {
	case flag != "":
		return flag
	case c.DefaultUser != "":
		return c.DefaultUser
	default:
		return DefaultUser
	}
}

// StoreOptions maps the config onto storage engine options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Root:        c.DataDir,
		DataFile:    c.DataFile,
		BackupDir:   c.Backups.DirName,
		KeepBackups: c.Backups.Keep,
	}
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{"version", "data_dir", "default_user", "data_file", "backups.keep", "backups.dir_name"}
}

// Get returns the value of a dotted key.
func (c *Config) Get(key string) (any, error) {
	switch key {
	case "version":
		return c.Version, nil
	case "data_dir":
		return c.DataDir, nil
	case "default_user":
		return c.DefaultUser, nil
	case "data_file":
		return c.DataFile, nil
	case "backups.keep":
		return c.Backups.Keep, nil
	case "backups.dir_name":
		return c.Backups.DirName, nil
	}
	return nil, unknownKey(key)
}

// Set assigns a dotted key from its string form and re-validates.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "data_dir":
		next.DataDir = value
	case "default_user":
		next.DefaultUser = value
	case "data_file":
		next.DataFile = value
	case "backups.keep":
		n, err := strconv.Atoi(value)
		if err != nil {
			return clierr.Newf(clierr.InvalidInput, "backups.keep must be an integer, got %q", value)
		}
		next.Backups.Keep = n
	case "backups.dir_name":
		next.Backups.DirName = value
	case "version":
		return clierr.New(clierr.InvalidInput, "version is read-only")
	default:
		return unknownKey(key)
	}
	if err := next.Validate(); err != nil {
		return clierr.New(clierr.InvalidInput, err.Error()).WithCause(err)
	}
	*c = next
	return nil
}

func unknownKey(key string) *clierr.Error {
	return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key).
		WithDetails(map[string]any{"key": key, "allowed": Keys()})
}
