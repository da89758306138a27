package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dm/voltie-go/internal/entity"
	"github.com/dm/voltie-go/internal/format"
	"github.com/dm/voltie-go/internal/model"
)

// reading returns the catalogue entry key read from s.
func reading(s *model.Snapshot, key string) entity.Reading {
	d, _ := entity.Lookup(key)
	return d.Read(s)
}

// utilisation is charge current as a percentage of the offered current, or
// false when either is missing.
func utilisation(s *model.Snapshot) (float64, bool) {
	cur, ok := reading(s, "charge_current").Float()
	if !ok {
		return 0, false
	}
	offered, ok := reading(s, "current_offered").Float()
	if !ok || offered <= 0 {
		return 0, false
	}
	return cur / offered * 100, true
}

// renderOverview renders the 7-card overview bar.
// Wide terminals (>= 80 cols): all 7 cards in a single horizontal row.
// Narrow terminals (< 80 cols): cards stacked in rows of 2 (4 rows: 2+2+2+1).
// Returns empty string if no snapshot is available yet.
func renderOverview(app *App) string {
	snap := app.state.Snapshot
	if snap == nil {
		return ""
	}

	width := app.width
	if width <= 0 {
		width = 80
	}
	narrowMode := width < 80

	var cardWidth int
	if narrowMode {
		cardWidth = (width - 4) / 2
		if cardWidth < 10 {
			cardWidth = 10
		}
	} else {
		cardWidth = (width - 14) / 7
		if cardWidth < 8 {
			cardWidth = 8
		}
	}

	// Mini bar inner width: card width minus padding (1 char each side).
	barWidth := cardWidth - 4
	if barWidth < 4 {
		barWidth = 4
	}

	cs := stateOf(snap)
	card1 := StyleOverviewCard.
		Background(stateColor(cs)).
		Foreground(colorDark).
		Bold(true).
		Width(cardWidth).
		Render(cs.String() + "\nState")

	card2 := StyleOverviewCard.
		Foreground(colorGreen).
		Width(cardWidth).
		Render(format.FormatReading(reading(snap, "charge_power")) + "\nPower")

	// Current card carries the utilisation bar against the offered current.
	curVal := format.FormatReading(reading(snap, "charge_current"))
	pct, hasPct := utilisation(snap)
	sev := utilisationSeverity(pct)
	if sev == severityCritical {
		curVal += "!"
	}
	bar := strings.Repeat("░", barWidth)
	if hasPct {
		bar = renderMiniBar(pct, barWidth)
	}
	offered := format.FormatReading(reading(snap, "current_offered"))
	card3 := StyleOverviewCard.
		Foreground(severityFg(sev, colorCyan)).
		Width(cardWidth).
		Render(curVal + "\n" + bar + "\nof " + offered)

	card4 := StyleOverviewCard.
		Foreground(colorPurple).
		Width(cardWidth).
		Render(format.FormatReading(reading(snap, "session_energy")) + "\nSession")

	card5 := StyleOverviewCard.
		Foreground(colorIndigo).
		Width(cardWidth).
		Render(format.FormatReading(reading(snap, "session_charge_time")) + "\nCharge Time")

	phases := reading(snap, "phases")
	card6 := StyleOverviewCard.
		Foreground(colorBlue).
		Width(cardWidth).
		Render(format.FormatReading(phases) + "\nPhases")

	volts, _ := reading(snap, "mains_voltage").Float()
	card7 := StyleOverviewCard.
		Foreground(severityFg(voltageSeverity(volts), colorOrange)).
		Width(cardWidth).
		Render(format.FormatReading(reading(snap, "mains_voltage")) + "\nMains")

	if narrowMode {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, card1, card2)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, card3, card4)
		row3 := lipgloss.JoinHorizontal(lipgloss.Top, card5, card6)
		return lipgloss.JoinVertical(lipgloss.Left, row1, row2, row3, card7)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, card1, card2, card3, card4, card5, card6, card7)
}

// renderMiniBar renders a progress bar using "█" for filled and "░" for
// empty cells. percent is clamped to [0, 100].
func renderMiniBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	percent = max(0, min(percent, 100))
	filled := min(int(percent/100.0*float64(width)), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// ageLabel renders how long ago the last snapshot was taken.
func ageLabel(app *App) string {
	if !app.state.Ready() {
		return ""
	}
	return fmt.Sprintf("updated %s", format.FormatAge(app.state.LastSuccess, app.clock))
}
