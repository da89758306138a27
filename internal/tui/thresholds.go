package tui

import "github.com/charmbracelet/lipgloss"

// nominalVoltage is the single-phase mains voltage the charger is rated for.
const nominalVoltage = 230.0

// severity represents the alert level for a reading.
type severity int

const (
	severityNormal   severity = iota
	severityWarning           // yellow
	severityCritical          // red
)

// voltageSeverity returns Warning when mains voltage deviates more than 6%
// from nominal, Critical beyond 10%. Zero means the charger did not report it.
func voltageSeverity(v float64) severity {
	if v <= 0 {
		return severityNormal
	}
	dev := (v - nominalVoltage) / nominalVoltage * 100
	if dev < 0 {
		dev = -dev
	}
	switch {
	case dev > 10:
		return severityCritical
	case dev > 6:
		return severityWarning
	default:
		return severityNormal
	}
}

// utilisationSeverity grades charge current against the offered current:
// Warning above 95%, Critical above 100%.
func utilisationSeverity(pct float64) severity {
	switch {
	case pct > 100:
		return severityCritical
	case pct > 95:
		return severityWarning
	default:
		return severityNormal
	}
}

// severityToStyle maps a severity level to the appropriate lipgloss style.
func severityToStyle(s severity) lipgloss.Style {
	switch s {
	case severityWarning:
		return StyleYellow
	case severityCritical:
		return StyleRed
	default:
		return StyleDim
	}
}

// severityFg is the card foreground for a severity, or fallback when normal.
func severityFg(s severity, fallback lipgloss.Color) lipgloss.Color {
	switch s {
	case severityWarning:
		return colorYellow
	case severityCritical:
		return colorRed
	default:
		return fallback
	}
}
