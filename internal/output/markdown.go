package output

import (
	"github.com/charmbracelet/glamour"
)

const defaultWrap = 80

// Markdown renders md for the terminal. Without color the plain "notty"
// style is used. On any renderer failure the text is returned unchanged.
func Markdown(md string, width int) string {
	if width <= 0 {
		width = defaultWrap
	}
	style := glamour.WithAutoStyle()
	if !colorEnabled {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
