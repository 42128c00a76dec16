// Package style provides shared colors and glyphs for terminal output.
package style

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Brand Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Dot     = "●"
)

// Styles for listing output.
var (
	// Name renders package names.
	Name = lipgloss.NewStyle().Foreground(Iris).Bold(true)

	// Muted renders secondary information such as revisions and paths.
	Muted = lipgloss.NewStyle().Foreground(Slate)
)

// Bind returns s rendering for w. Writers that are not terminals get plain text.
func Bind(s lipgloss.Style, w io.Writer) lipgloss.Style {
	return s.Renderer(lipgloss.NewRenderer(w))
}
