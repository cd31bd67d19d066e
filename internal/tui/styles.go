package tui

import "github.com/charmbracelet/lipgloss"

// Styles groups the lipgloss styles used by View.
type Styles struct {
	Title        lipgloss.Style
	Info         lipgloss.Style
	Header       lipgloss.Style
	HeaderCursor lipgloss.Style
	Cell         lipgloss.Style
	Placeholder  lipgloss.Style
	Summary      lipgloss.Style
	Status       lipgloss.Style
	Error        lipgloss.Style
	Help         lipgloss.Style
	Menu         lipgloss.Style
	MenuSelected lipgloss.Style
}

// DefaultStyles returns the viewer's color scheme.
func DefaultStyles() Styles {
	return Styles{
		Title:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Info:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Header:       lipgloss.NewStyle().Bold(true),
		HeaderCursor: lipgloss.NewStyle().Bold(true).Reverse(true),
		Cell:         lipgloss.NewStyle(),
		Placeholder:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Summary:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Status:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Error:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Help:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Menu:         lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		MenuSelected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
	}
}
