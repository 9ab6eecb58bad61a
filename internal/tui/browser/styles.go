package browser

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dirStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	nbStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)
