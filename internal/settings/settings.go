// Package settings reads and writes a user's settings.json document:
//
//	{ "version": 1, "config": { "hideCompleted": false }, "updatedAt": "..." }
//
// Loading merges defaults into whatever is on disk, so files written by
// older or newer clients keep working and keys this package does not know
// about survive a save.
package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/store"
	"github.com/tcsenpai/TG-Manager/internal/task"
)

const (
	// FileName is the settings document inside the user directory.
	FileName = "settings.json"

	// CurrentVersion is the document version written by this package.
	CurrentVersion = 1

	// KeyHideCompleted hides tasks in the final state from listings.
	KeyHideCompleted = "hideCompleted"

	// TimeLayout is the updatedAt format.
	TimeLayout = "2006-01-02T15:04:05.000Z"

	dirMode = 0o750
)

// defaults holds the value of every known key under "config".
func defaults() map[string]any {
	return map[string]any{
		KeyHideCompleted: false,
	}
}

// Document is a loaded settings file.
type Document struct {
	path string
	raw  map[string]any
}

// PathFor returns the settings path for a user's store.
func PathFor(s *store.Store) string {
	return s.Path(FileName)
}

// Load reads the document at path. A missing file yields the defaults
// without writing anything.
func Load(path string) (*Document, error) {
	raw := map[string]any{}

	data, err := os.ReadFile(path) //nolint:gosec // path from the user directory
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, clierr.IO("read", path, err)
	default:
		if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
			return nil, clierr.Newf(clierr.CorruptStorage, "%s: settings must be a JSON object", path).
				WithDetails(map[string]any{"path": path, "reason": "not a JSON object"})
		}
	}

	d := &Document{path: path, raw: raw}
	d.merge()
	return d, nil
}

// merge fills in missing keys with defaults and upgrades the version.
func (d *Document) merge() {
	cfg, ok := d.raw["config"].(map[string]any)
	if !ok {
		cfg = map[string]any{}
		d.raw["config"] = cfg
	}
	for k, v := range defaults() {
		if _, present := cfg[k]; !present {
			cfg[k] = v
		}
	}

	if v, ok := d.raw["version"].(float64); !ok || v < CurrentVersion {
		d.raw["version"] = CurrentVersion
	}
	if _, ok := d.raw["updatedAt"]; !ok {
		d.raw["updatedAt"] = nil
	}
}

func (d *Document) config() map[string]any {
	return d.raw["config"].(map[string]any)
}

// Path returns where the document is stored.
func (d *Document) Path() string { return d.path }

// HideCompleted reports whether final-state tasks should be hidden.
func (d *Document) HideCompleted() bool {
	b, _ := d.config()[KeyHideCompleted].(bool)
	return b
}

// SetHideCompleted updates the hideCompleted flag.
func (d *Document) SetHideCompleted(v bool) {
	d.config()[KeyHideCompleted] = v
}

// UpdatedAt returns the last save time, or the zero time if never saved.
func (d *Document) UpdatedAt() time.Time {
	s, _ := d.raw["updatedAt"].(string)
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Keys returns the known setting keys, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults()))
	for k := range defaults() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of a setting under "config". Unknown keys present in
// the file are returned as-is.
func (d *Document) Get(key string) (any, error) {
	v, ok := d.config()[key]
	if !ok {
		return nil, unknownKey(key)
	}
	return v, nil
}

// Set assigns a known setting from its string form.
func (d *Document) Set(key, value string) error {
	switch key {
	case KeyHideCompleted:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return clierr.Newf(clierr.InvalidInput, "%s must be true or false, got %q", key, value)
		}
		d.SetHideCompleted(b)
		return nil
	}
	return unknownKey(key)
}

// Map returns the full document, including unknown keys.
func (d *Document) Map() map[string]any { return d.raw }

// MarshalJSON encodes the full document.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.raw)
}

// Save stamps updatedAt with now and writes the document atomically.
func (d *Document) Save(now time.Time) error {
	d.raw["updatedAt"] = now.UTC().Format(TimeLayout)

	data, err := task.MarshalJSON(d.raw)
	if err != nil {
		return clierr.New(clierr.InternalError, "encoding settings").WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(d.path), dirMode); err != nil {
		return clierr.IO("mkdir", filepath.Dir(d.path), err)
	}
	return store.WriteFile(d.path, data)
}

func unknownKey(key string) *clierr.Error {
	return clierr.Newf(clierr.InvalidInput, "unknown setting %q", key).
		WithDetails(map[string]any{"key": key, "allowed": Keys()})
}
