package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent  = lipgloss.Color("#7D56F4")
	colorSuccess = lipgloss.Color("#04B575")
	colorDanger  = lipgloss.Color("#FF5F87")
	colorMuted   = lipgloss.Color("#767676")
)

type styles struct {
	Title       lipgloss.Style
	Label       lipgloss.Style
	FocusLabel  lipgloss.Style
	FieldError  lipgloss.Style
	Success     lipgloss.Style
	Error       lipgloss.Style
	Muted       lipgloss.Style
	Header      lipgloss.Style
	Cell        lipgloss.Style
	SelectedRow lipgloss.Style
	Modal       lipgloss.Style
	Section     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginBottom(1),
		Label:       lipgloss.NewStyle().Width(9),
		FocusLabel:  lipgloss.NewStyle().Width(9).Bold(true).Foreground(colorAccent),
		FieldError:  lipgloss.NewStyle().Foreground(colorDanger).PaddingLeft(9),
		Success:     lipgloss.NewStyle().Foreground(colorSuccess).Bold(true),
		Error:       lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
		Muted:       lipgloss.NewStyle().Foreground(colorMuted),
		Header:      lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Cell:        lipgloss.NewStyle().Padding(0, 1),
		SelectedRow: lipgloss.NewStyle().Padding(0, 1).Reverse(true),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDanger).
			Padding(1, 2),
		Section: lipgloss.NewStyle().MarginTop(1),
	}
}
