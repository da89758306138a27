package tui

import "github.com/charmbracelet/lipgloss"

// Color constants for the charger dashboard palette.
var (
	colorGreen  = lipgloss.Color("#10b981")
	colorYellow = lipgloss.Color("#f59e0b")
	colorRed    = lipgloss.Color("#ef4444")
	colorGray   = lipgloss.Color("#6b7280")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorCyan   = lipgloss.Color("#06b6d4")
	colorPurple = lipgloss.Color("#8b5cf6")
	colorIndigo = lipgloss.Color("#6366f1")
	colorOrange = lipgloss.Color("#f97316")
	colorWhite  = lipgloss.Color("#f8fafc")
	colorDark   = lipgloss.Color("#1e293b")
	colorAlt    = lipgloss.Color("#0f172a")
)

// Charging state styles, used by the header indicator.
var (
	StyleStateCharging  = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	StyleStateConnected = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	StyleStateIdle      = lipgloss.NewStyle().Bold(true).Foreground(colorGray)
	StyleStateUnknown   = lipgloss.NewStyle().Foreground(colorGray)
)

// StyleHeader is the full-width dark header bar.
var StyleHeader = lipgloss.NewStyle().
	Background(colorDark).
	Foreground(colorWhite).
	Padding(0, 1)

// StyleOverviewCard is a single card of the overview bar.
var StyleOverviewCard = lipgloss.NewStyle().
	Background(colorAlt).
	Foreground(colorWhite).
	Padding(0, 1).
	Margin(0).
	Align(lipgloss.Center)

// Table styles.
var (
	StyleTableHeader = lipgloss.NewStyle().
				Bold(true).
				Underline(true).
				Foreground(colorGray)

	StyleTableRow = lipgloss.NewStyle().
			Foreground(colorWhite)

	StyleTableRowAlt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#cbd5e1"))
)

// Utility styles.
var (
	StyleError = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	StyleDim   = lipgloss.NewStyle().Foreground(colorGray)
)

// Named color styles for cell coloring.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	StyleOrange = lipgloss.NewStyle().Foreground(colorOrange)
	StyleBlue   = lipgloss.NewStyle().Foreground(colorBlue)
	StyleCyan   = lipgloss.NewStyle().Foreground(colorCyan)
	StylePurple = lipgloss.NewStyle().Foreground(colorPurple)
	StyleRed    = lipgloss.NewStyle().Foreground(colorRed)
)

// StateStyle returns the header style for a charging state.
func StateStyle(s chargeState) lipgloss.Style {
	switch s {
	case chargeCharging:
		return StyleStateCharging
	case chargeConnected:
		return StyleStateConnected
	case chargeIdle:
		return StyleStateIdle
	default:
		return StyleStateUnknown
	}
}

// stateColor is the card background for a charging state.
func stateColor(s chargeState) lipgloss.Color {
	switch s {
	case chargeCharging:
		return colorGreen
	case chargeConnected:
		return colorBlue
	case chargeIdle:
		return colorIndigo
	default:
		return colorGray
	}
}
