// Package theme centralizes Lip Gloss styles for the Bubble Tea UI.
package theme

import "github.com/charmbracelet/lipgloss/v2"

// Theme groups the styles used across the UI.
type Theme struct {
	Footer FooterTheme
	Panel  PanelTheme
	Modal  ModalTheme
	Alarm  AlarmTheme
}

// FooterTheme styles the bottom status bar.
type FooterTheme struct {
	Help   lipgloss.Style
	Status lipgloss.Style
	Error  lipgloss.Style
}

// PanelTheme styles framed panels and headings.
type PanelTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
}

// ModalTheme styles centered modal overlays (confirm, builder).
type ModalTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
}

// AlarmTheme styles alarm row fragments.
type AlarmTheme struct {
	Time      lipgloss.Style
	Triggered lipgloss.Style
	DayOn     lipgloss.Style
	DayOff    lipgloss.Style
	Disabled  lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	return Theme{
		Footer: FooterTheme{
			Help:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Error:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		},
		Panel: PanelTheme{
			Frame: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
			Title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
			Body:  lipgloss.NewStyle(),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1, 2),
			Title: lipgloss.NewStyle().Bold(true).Underline(true),
			Body:  lipgloss.NewStyle(),
		},
		Alarm: AlarmTheme{
			Time:      lipgloss.NewStyle().Bold(true),
			Triggered: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
			DayOn:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
			DayOff:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
			Disabled:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		},
	}
}
