package tui

import (
	"fmt"

	"github.com/dm/voltie-go/internal/format"
)

var phaseColumns = []columnDef{
	{Title: "Phase", Width: 1, Align: "left"},
	{Title: "Voltage", Width: 2, Align: "right"},
	{Title: "Current", Width: 2, Align: "right"},
	{Title: "Power", Width: 2, Align: "right"},
	{Title: "DLM", Width: 2, Align: "right"},
	{Title: "IPM", Width: 2, Align: "right"},
}

// per-phase catalogue keys, in column order after "Phase"
var phaseKeys = []string{"voltage", "current", "power", "dlm_current", "ipm_current"}

// phaseRows builds one row per phase from the power endpoint readings.
func phaseRows(app *App) [][]string {
	snap := app.state.Snapshot
	rows := make([][]string, 0, 3)
	for phase := 1; phase <= 3; phase++ {
		row := []string{fmt.Sprintf("L%d", phase)}
		for _, k := range phaseKeys {
			row = append(row, format.FormatReading(reading(snap, fmt.Sprintf("%s_l%d", k, phase))))
		}
		rows = append(rows, row)
	}
	return rows
}

// renderPhases renders the per-phase table. Empty before the first snapshot.
func renderPhases(app *App) string {
	if !app.state.Ready() {
		return ""
	}
	title := "Phases"
	dlm := reading(app.state.Snapshot, "dlm_valid")
	ipm := reading(app.state.Snapshot, "ipm_valid")
	title += fmt.Sprintf("  DLM %s  IPM %s", format.FormatReading(dlm), format.FormatReading(ipm))
	return renderTable(title, phaseColumns, phaseRows(app), app.width)
}
