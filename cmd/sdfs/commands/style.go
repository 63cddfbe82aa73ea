package commands

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	dirStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	attrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)
