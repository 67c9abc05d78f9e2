package cmd

import "github.com/charmbracelet/lipgloss"

// Terminal styles shared across commands.
var (
	styleMetaRepo = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	styleProject  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	styleTag      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleBranch   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleWarning  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleOK       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleHeader   = lipgloss.NewStyle().Bold(true).Underline(true)
)
