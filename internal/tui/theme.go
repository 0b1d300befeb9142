package tui

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha, the subset the coach screens use.
const (
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorLavender lipgloss.Color = "#b4befe"
	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface2 lipgloss.Color = "#585b70"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

const (
	colorBrand   = colorMauve
	colorFocus   = colorLavender
	colorSuccess = colorGreen
	colorError   = colorRed
	colorWarning = colorYellow
	colorInfo    = colorTeal
)

var (
	headerAppStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorBrand).Padding(0, 1)
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorFocus).Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorOverlay1).Padding(0, 1)
	tabSepStyle      = lipgloss.NewStyle().Foreground(colorSurface2)
	headerBarStyle   = lipgloss.NewStyle().Background(colorMantle)

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	sectionStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface2).Padding(0, 1)
	dimStyle     = lipgloss.NewStyle().Foreground(colorSubtext0)
	amountStyle  = lipgloss.NewStyle().Foreground(colorPeach)

	agentOnStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
	agentOffStyle = lipgloss.NewStyle().Foreground(colorOverlay1)

	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	alertStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)

	statusBarStyle = lipgloss.NewStyle().Foreground(colorText).Background(colorSurface0).Padding(0, 2)
	statusErrStyle = statusBarStyle.Foreground(colorError)
	footerStyle    = lipgloss.NewStyle().Background(colorMantle).Padding(0, 2)
)
