package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#2196F3")
	muted  = lipgloss.Color("#8a8f98")
	warn   = lipgloss.Color("#FFC107")
	danger = lipgloss.Color("#e53935")
)

// Styles стили интерфейса.
type Styles struct {
	Header   lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Preview  lipgloss.Style
	Muted    lipgloss.Style
	Pin      lipgloss.Style
	Badge    lipgloss.Style
	Detail   lipgloss.Style
	Modal    lipgloss.Style
	Error    lipgloss.Style
	Status   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(accent),
		Item:     lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().PaddingLeft(1).Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(accent).Bold(true),
		Preview:  lipgloss.NewStyle().Foreground(muted),
		Muted:    lipgloss.NewStyle().Foreground(muted),
		Pin:      lipgloss.NewStyle().Foreground(warn),
		Badge:    lipgloss.NewStyle().Foreground(accent),
		Detail:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		Modal:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2),
		Error:    lipgloss.NewStyle().Foreground(danger),
		Status:   lipgloss.NewStyle().Foreground(muted).Italic(true),
	}
}
