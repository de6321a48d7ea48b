package config

import "fmt"

// migration upgrades a config by exactly one version.
type migration func(*Config)

// upgrades is indexed by the version a migration starts from.
var upgrades = map[int]migration{
	1: func(cfg *Config) {
		// v1 kept backup retention at the top level as keep_backups.
		if cfg.LegacyKeepBackups != 0 {
			cfg.Backups.Keep = cfg.LegacyKeepBackups
		}
		cfg.LegacyKeepBackups = 0
	},
}

// migrate brings cfg up to CurrentVersion one step at a time. Configs from a
// newer tgm are rejected rather than silently downgraded.
func migrate(cfg *Config) error {
	switch {
	case cfg.Version < 1:
		return fmt.Errorf("%w: config version %d is invalid", ErrInvalid, cfg.Version)
	case cfg.Version > CurrentVersion:
		return fmt.Errorf("%w: config version %d is newer than this tgm supports (%d); upgrade tgm",
			ErrInvalid, cfg.Version, CurrentVersion)
	}

	for v := cfg.Version; v < CurrentVersion; v++ {
		up, ok := upgrades[v]
		if !ok {
			return fmt.Errorf("%w: cannot upgrade config from version %d", ErrInvalid, v)
		}
		up(cfg)
		cfg.Version = v + 1
	}
	return nil
}
