// Package export writes a user's tasks out of the data directory: as the raw
// JSON document, as YAML, or as a tar.gz bundle of the whole user directory.
package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/task"
)

// Supported formats.
const (
	FormatJSON   = "json"
	FormatYAML   = "yaml"
	FormatBundle = "bundle"
)

// Formats lists the accepted --format values.
func Formats() []string { return []string{FormatJSON, FormatYAML, FormatBundle} }

// ValidateFormat rejects unknown export formats.
func ValidateFormat(format string) error {
	for _, f := range Formats() {
		if f == format {
			return nil
		}
	}
	return clierr.Newf(clierr.InvalidInput, "unknown export format %q", format).
		WithDetails(map[string]any{"format": format, "allowed": Formats()})
}

// JSON writes the document exactly as the storage engine would.
func JSON(w io.Writer, f *task.File) error {
	data, err := task.Encode(f)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

// YAML writes the document as YAML with the same field names.
func YAML(w io.Writer, f *task.File) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2) //nolint:mnd // two-space indent
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return enc.Close()
}

const maxSlugLength = 40

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a user identifier into a lowercase, hyphenated file name part.
func Slug(s string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return "user"
	}
	return slug
}

// FileName suggests an output file name for an export, e.g.
// tgm-alice-20261017-150405.tar.gz.
func FileName(userID, format string, now time.Time) string {
	ext := map[string]string{
		FormatJSON:   ".json",
		FormatYAML:   ".yaml",
		FormatBundle: ".tar.gz",
	}[format]
	return fmt.Sprintf("tgm-%s-%s%s", Slug(userID), now.UTC().Format("20060102-150405"), ext)
}
