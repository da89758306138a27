package tui

import (
	"fmt"

	"github.com/dm/voltie-go/internal/entity"
	"github.com/dm/voltie-go/internal/format"
)

var readingColumns = []columnDef{
	{Title: "Entity", Width: 3, Align: "left"},
	{Title: "Value", Width: 2, Align: "right"},
	{Title: "Kind", Width: 2, Align: "left"},
	{Title: "Key", Width: 2, Align: "left"},
}

func newReadingsTable() tableModel {
	return newTableModel(readingColumns)
}

// readingRows renders every catalogue entity against the current snapshot.
func readingRows(app *App) [][]string {
	readings := entity.Project(app.state.Snapshot)
	rows := make([][]string, len(readings))
	for i, r := range readings {
		rows[i] = []string{r.Name, format.FormatReading(r), string(r.Kind), r.Key}
	}
	return rows
}

// readingsPageSize fits the list below the header, overview, trend cards and
// footer.
func readingsPageSize(height int) int {
	return max(height-18, 3)
}

// renderReadings renders one page of the full entity list.
func renderReadings(app *App) string {
	if !app.state.Ready() {
		return ""
	}
	rows := readingRows(app)

	t := app.readings
	t.clampPage(len(rows))

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	visible := currentPageIndices(idx, t.page, t.pageSize)
	page := make([][]string, len(visible))
	for i, v := range visible {
		page[i] = rows[v]
	}

	title := fmt.Sprintf("Readings  page %d/%d", t.page+1, pageCount(len(rows), t.pageSize))
	return renderTable(title, readingColumns, page, app.width)
}
