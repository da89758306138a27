package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStopConfirm renders the confirmation dialog shown before a stop
// command. The caller renders the header above and the footer below.
func renderStopConfirm(app *App) string {
	width := app.width
	if width <= 0 {
		width = 80
	}
	height := app.height
	if height <= 0 {
		height = 24
	}

	titleText := "Stop Charging"
	hintText := StyleDim.Render("[y: confirm  n/esc: cancel]")
	innerWidth := width - 2 // StyleHeader has Padding(0,1)
	gap := max(innerWidth-lipgloss.Width(titleText)-lipgloss.Width(hintText), 1)
	titleBar := StyleHeader.Width(width).MaxWidth(width).Render(titleText + strings.Repeat(" ", gap) + hintText)

	headerH := lipgloss.Height(renderHeader(app))
	footerH := lipgloss.Height(renderFooter(app))
	availH := max(height-headerH-lipgloss.Height(titleBar)-footerH, 1)

	lines := []string{
		"",
		"  The charger " + StyleYellow.Render(sanitize(app.inst.Name)) + " will stop the current session.",
	}
	if app.state.Ready() {
		lines = append(lines, "  Charge state: "+stateOf(app.state.Snapshot).String())
	}
	lines = append(lines, "", "  "+StyleYellow.Render("Press y to confirm, n or esc to cancel."))

	// The prompt is the last line and survives any trimming.
	if len(lines) > availH {
		lines = lines[len(lines)-availH:]
	}
	for len(lines) < availH {
		lines = append(lines, "")
	}
	return titleBar + "\n" + strings.Join(lines, "\n")
}
