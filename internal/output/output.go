// Package output handles formatting CLI output as a tree, JSON, or compact
// one-line records.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Format represents an output format.
type Format int

const (
	// FormatAuto uses the default format (tree).
	FormatAuto Format = iota
	// FormatJSON outputs JSON.
	FormatJSON
	// FormatTree outputs a human-readable tree.
	FormatTree
	// FormatCompact outputs one-line-per-record compact format.
	FormatCompact
)

// EnvFormat selects the format when no flag is given.
const EnvFormat = "TGM_OUTPUT"

// Detect returns the appropriate format based on flags and environment.
func Detect(jsonFlag, compactFlag bool) Format {
	if jsonFlag {
		return FormatJSON
	}
	if compactFlag {
		return FormatCompact
	}

	switch os.Getenv(EnvFormat) {
	case "json":
		return FormatJSON
	case "compact", "oneline":
		return FormatCompact
	case "tree":
		return FormatTree
	}
	return FormatTree
}

var colorEnabled = true

// DisableColor strips all styling from rendered output.
func DisableColor() {
	colorEnabled = false
	lipgloss.SetColorProfile(termenv.Ascii)
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	boldStyle = lipgloss.NewStyle()
}

// ColorEnabled reports whether styling is active.
func ColorEnabled() bool { return colorEnabled }
