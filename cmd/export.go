package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
	"github.com/tcsenpai/TG-Manager/internal/export"
	"github.com/tcsenpai/TG-Manager/internal/output"
	"github.com/tcsenpai/TG-Manager/internal/tasklist"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's tasks",
	Long: `Writes the user's tasks to stdout or a file.

Formats:
  json    the data file exactly as stored
  yaml    the same document as YAML
  bundle  a tar.gz of the user directory (data, settings, backups, activity log)

With -o - the export goes to stdout. With no -o, json and yaml go to stdout and
bundle is written to a timestamped file in the current directory.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("format", "f", export.FormatJSON, "export format ("+strings.Join(export.Formats(), ", ")+")")
	exportCmd.Flags().StringP("output", "o", "", "output file (- for stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	dest, _ := cmd.Flags().GetString("output")
	if err := export.ValidateFormat(format); err != nil {
		return err
	}

	m, err := openManager()
	if err != nil {
		return err
	}
	if err := m.Initialize(); err != nil {
		return err
	}

	if dest == "" && format == export.FormatBundle {
		dest = export.FileName(m.Store().UserID(), format, time.Now())
	}
	if dest == "" || dest == "-" {
		return writeExport(cmd.OutOrStdout(), m, format)
	}

	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen output path
	if err != nil {
		return clierr.IO("create", dest, err)
	}
	if err := writeExport(f, m, format); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return clierr.IO("close", dest, err)
	}

	w := cmd.OutOrStdout()
	return writeResult(w, map[string]any{"status": "exported", "format": format, "file": dest}, func() {
		output.Messagef(w, "Exported %s to %s", format, dest)
	})
}

func writeExport(w io.Writer, m *tasklist.Manager, format string) error {
	if format == export.FormatBundle {
		unlock, err := m.Store().Lock()
		if err != nil {
			return err
		}
		defer func() { _ = unlock() }()
		prefix := fmt.Sprintf("tgm-%s", export.Slug(m.Store().UserID()))
		return export.Bundle(w, m.Store().Dir(), prefix)
	}

	f, err := m.File()
	if err != nil {
		return err
	}
	if format == export.FormatYAML {
		return export.YAML(w, f)
	}
	return export.JSON(w, f)
}
