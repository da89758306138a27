package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dm/voltie-go/internal/format"
	"github.com/dm/voltie-go/internal/model"
)

// renderMetricCard renders a single metric card with title, value, and sparkline.
//
// Layout (3 rows inside a rounded border):
//
//	╭──────────────────╮
//	│ Title            │   ← titleStyle (dim normally; yellow/red past a threshold)
//	│ 7.36 kW          │   ← bold, metric color
//	│ ▁▂▃▅▇█▇▅▃▂       │   ← colored sparkline
//	╰──────────────────╯
func renderMetricCard(title, value string, sparkValues []float64, fromZero bool, cardWidth int, color lipgloss.Color, titleStyle lipgloss.Style) string {
	// room for a short title such as "Power" without wrapping
	const minCardWidth = 12
	if cardWidth < minCardWidth {
		cardWidth = minCardWidth
	}

	// Inner width = card width minus border (2) and padding (2).
	innerWidth := cardWidth - 6
	if innerWidth < 1 {
		innerWidth = 1
	}

	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(color)

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorGray).
		Padding(0, 1).
		Width(cardWidth - 4)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		valueStyle.Render(value),
		RenderSparkline(sparkValues, innerWidth, color, fromZero),
	))
}

// renderMetricsRow renders the trend cards for charge power, charge current,
// session energy and mains voltage.
// Wide terminals (>= 80 cols): 1x4 horizontal row.
// Narrow terminals (< 80 cols): 2x2 grid.
// Returns empty string when no data is available.
func renderMetricsRow(app *App) string {
	snap := app.state.Snapshot
	if snap == nil {
		return ""
	}

	title := "Trend"
	if age := ageLabel(app); age != "" {
		title += "  " + age
	}

	volts, _ := reading(snap, "mains_voltage").Float()
	pct, _ := utilisation(snap)
	voltTitle := severityToStyle(voltageSeverity(volts))
	curTitle := severityToStyle(utilisationSeverity(pct))

	cards := func(cardWidth int) []string {
		return []string{
			renderMetricCard("Charge Power", format.FormatReading(reading(snap, "charge_power")), app.history.Values(model.SeriesChargePower), true, cardWidth, colorGreen, StyleDim),
			renderMetricCard("Charge Current", format.FormatReading(reading(snap, "charge_current")), app.history.Values(model.SeriesChargeCurrent), true, cardWidth, colorCyan, curTitle),
			renderMetricCard("Session Energy", format.FormatReading(reading(snap, "session_energy")), app.history.Values(model.SeriesSessionEnergy), true, cardWidth, colorPurple, StyleDim),
			renderMetricCard("Mains Voltage", format.FormatReading(reading(snap, "mains_voltage")), app.history.Values(model.SeriesMainsVoltage), false, cardWidth, colorOrange, voltTitle),
		}
	}

	if app.width > 0 && app.width < 80 {
		// 2x2 grid: each card renders (cardWidth-2) wide, so 2 cards fill
		// app.width at cardWidth=(app.width+4)/2.
		cardWidth := (app.width + 4) / 2
		if cardWidth < 8 {
			return ""
		}
		c := cards(cardWidth)
		label := StyleDim.MaxWidth(app.width).Render(title)
		top := lipgloss.JoinHorizontal(lipgloss.Top, c[0], c[1])
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, c[2], c[3])
		return lipgloss.JoinVertical(lipgloss.Left, label, top, bottom)
	}

	cardWidth := (app.width + 8) / 4
	if cardWidth < 20 {
		cardWidth = 20
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, cards(cardWidth)...)
	return lipgloss.JoinVertical(lipgloss.Left, StyleDim.Render(title), row)
}
