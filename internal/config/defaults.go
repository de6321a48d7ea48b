// Package config handles the application configuration: where user data
// lives and how the storage engine keeps backups.
package config

const (
	// AppDir is the directory name used under the platform data directory.
	AppDir = "tgm"

	// ConfigFileName is the name of the config file in the data root.
	ConfigFileName = "config.yml"

	// DefaultDataFile is the primary data file name inside a user directory.
	DefaultDataFile = "tasks.json"
	// DefaultBackupDir is the backup subdirectory inside a user directory.
	DefaultBackupDir = "backups"
	// DefaultKeepBackups is how many backups survive each save.
	DefaultKeepBackups = 10
	// DefaultUser is used when neither --user nor default_user is set.
	DefaultUser = "default"

	// EnvPrefix prefixes environment overrides, e.g. TGM_BACKUPS_KEEP.
	EnvPrefix = "TGM"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 2

	// KeepAll disables backup pruning.
	KeepAll = -1
)
