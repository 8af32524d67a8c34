package cli

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal output.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Dim    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Cell:   lipgloss.NewStyle(),
		Dim:    lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Table is a simple column-aligned table.
type Table struct {
	Styles  Styles
	Headers []string
	Rows    [][]string
}

// NewTable creates a table with the default styles.
func NewTable(headers ...string) *Table {
	return &Table{Styles: NewStyles(DefaultTheme), Headers: headers}
}

// Append adds a row. Missing cells render empty.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table to w. Columns are separated by two spaces and
// padded by display width, so styled and wide characters stay aligned.
func (t *Table) Render(w io.Writer) error {
	cols := len(t.Headers)
	for _, row := range t.Rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return nil
	}

	widths := make([]int, cols)
	measure := func(cells []string) {
		for i, c := range cells {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}

	var sb strings.Builder
	line := func(cells []string, style lipgloss.Style) {
		for i := range cols {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			sb.WriteString(style.Render(cell))
			if i < cols-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
			}
		}
		sb.WriteString("\n")
	}
	if len(t.Headers) > 0 {
		line(t.Headers, t.Styles.Header)
	}
	for _, row := range t.Rows {
		line(row, t.Styles.Cell)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Truncate shortens s to at most width display cells, marking the cut
// with an ellipsis. Multi-byte characters are never split.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width-1 {
			return string(runes[:i]) + "…"
		}
		currentWidth += w
	}
	return s
}
