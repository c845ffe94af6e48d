// Package theme holds the lipgloss styles used by the astrolog CLI.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Color constants for the astrolog night theme.
const (
	ColorPrimary       = lipgloss.Color("#1e3a8a")
	ColorAccent        = lipgloss.Color("#dc2626")
	ColorTextPrimary   = lipgloss.Color("#e5e7eb")
	ColorTextSecondary = lipgloss.Color("#9ca3af")
	ColorBorderSoft    = lipgloss.Color("#24324f")
	ColorRowAlt        = lipgloss.Color("#11182a")
	ColorSuccess       = lipgloss.Color("#22c55e")
	ColorWarning       = lipgloss.Color("#f59e0b")
)

// Styles holds every lipgloss style used across the CLI.
type Styles struct {
	Title lipgloss.Style

	Header lipgloss.Style
	Cell   lipgloss.Style
	RowAlt lipgloss.Style
	Border lipgloss.Style

	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the default set of styles for astrolog.
// Callers receive a value copy, so mutations stay local.
func DefaultStyles() Styles {
	cell := lipgloss.NewStyle().
		Foreground(ColorTextPrimary).
		Padding(0, 1)

	return Styles{
		Title: lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			MarginTop(1),

		Header: lipgloss.NewStyle().
			Background(ColorPrimary).
			Foreground(ColorTextPrimary).
			Bold(true).
			Padding(0, 1),

		Cell:   cell,
		RowAlt: cell.Background(ColorRowAlt),
		Border: lipgloss.NewStyle().Foreground(ColorBorderSoft),

		Muted: lipgloss.NewStyle().
			Foreground(ColorTextSecondary),

		Success: lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true),
	}
}

// Table builds a bordered table with striped rows.
func (s Styles) Table(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.Header
			case row%2 == 1:
				return s.RowAlt
			default:
				return s.Cell
			}
		}).
		Headers(headers...).
		Rows(rows...)
}

// Section renders title above body.
func (s Styles) Section(title, body string) string {
	return lipgloss.JoinVertical(lipgloss.Left, s.Title.Render(title), body)
}
