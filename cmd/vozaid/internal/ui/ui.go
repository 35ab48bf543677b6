// Package ui provides terminal output styling for the vozaid CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the CLI color scheme.
type Theme struct {
	Primary lipgloss.Color // accent color for labels and titles
	Dim     lipgloss.Color // dimmed color for secondary text
	Warn    lipgloss.Color // color for empty/attention values
}

// DefaultTheme is the default theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00b4d8"),
	Dim:     lipgloss.Color("#6e7681"),
	Warn:    lipgloss.Color("#f4a261"),
}

// Styles holds the styles derived from a theme.
type Styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Dim   lipgloss.Style
	Warn  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Dim:   lipgloss.NewStyle().Foreground(t.Dim),
		Warn:  lipgloss.NewStyle().Foreground(t.Warn),
	}
}

// CountTable renders label → count rows with aligned columns, in the
// given row order. Zero counts render in the warning style so sparsely
// trained intents stand out.
func (s Styles) CountTable(order []string, counts map[string]int) string {
	width := 0
	for _, label := range order {
		if len(label) > width {
			width = len(label)
		}
	}

	var b strings.Builder
	for _, label := range order {
		n := counts[label]
		value := fmt.Sprintf("%d", n)
		if n == 0 {
			value = s.Warn.Render("0")
		}
		fmt.Fprintf(&b, "  %s  %s\n", s.Label.Render(pad(label, width)), value)
	}
	return b.String()
}

// pad right-pads label to width.
func pad(label string, width int) string {
	if len(label) >= width {
		return label
	}
	return label + strings.Repeat(" ", width-len(label))
}
