package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const minColumnWidth = 4

// columnDef describes a single column in a table.
type columnDef struct {
	Title string
	Width int    // relative weight
	Align string // "left" or "right"
}

// tableModel is the paginated base shared by the dashboard tables.
type tableModel struct {
	columns  []columnDef
	page     int // 0-indexed
	pageSize int
}

func newTableModel(cols []columnDef) tableModel {
	return tableModel{columns: cols, pageSize: 10}
}

// Update handles page navigation keys.
func (t tableModel) Update(msg tea.Msg) tableModel {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return t
	}
	switch {
	case key.Matches(km, keys.PrevPage):
		if t.page > 0 {
			t.page--
		}
	case key.Matches(km, keys.NextPage):
		t.page++
	}
	return t
}

// pageCount returns the total number of pages for totalRows rows at pageSize rows per page.
// Always at least 1.
func pageCount(totalRows, pageSize int) int {
	if totalRows == 0 || pageSize <= 0 {
		return 1
	}
	c := totalRows / pageSize
	if totalRows%pageSize != 0 {
		c++
	}
	return c
}

// currentPageIndices returns the slice of row indices visible on the given page.
func currentPageIndices(allIndices []int, page, pageSize int) []int {
	if pageSize <= 0 || len(allIndices) == 0 {
		return allIndices
	}
	start := page * pageSize
	if start >= len(allIndices) {
		start = 0
	}
	end := min(start+pageSize, len(allIndices))
	return allIndices[start:end]
}

// clampPage keeps the page index within bounds for totalRows rows.
func (t *tableModel) clampPage(totalRows int) {
	pc := pageCount(totalRows, t.pageSize)
	if t.page >= pc {
		t.page = pc - 1
	}
	if t.page < 0 {
		t.page = 0
	}
}

// columnWidths distributes available columns across defs proportionally to
// their weights. Every column gets at least minColumnWidth.
func columnWidths(defs []columnDef, available int) []int {
	if len(defs) == 0 {
		return nil
	}
	widths := make([]int, len(defs))
	total := 0
	for _, d := range defs {
		total += max(d.Width, 1)
	}
	if available <= 0 {
		for i := range widths {
			widths[i] = minColumnWidth
		}
		return widths
	}
	for i, d := range defs {
		widths[i] = max(available*max(d.Width, 1)/total, minColumnWidth)
	}
	return widths
}

// truncateName shortens s to at most maxWidth terminal cells, marking the cut
// with "..." when there is room for it.
func truncateName(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// renderRow lays out cells in columns of the given widths separated by one space.
func renderRow(cells []string, widths []int, defs []columnDef) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		w := widths[i]
		c = truncateName(c, w)
		pad := strings.Repeat(" ", max(w-lipgloss.Width(c), 0))
		if defs[i].Align == "right" {
			parts[i] = pad + c
		} else {
			parts[i] = c + pad
		}
	}
	return strings.Join(parts, " ")
}

// renderTable renders a titled table with a header row and striped rows.
func renderTable(title string, defs []columnDef, rows [][]string, width int) string {
	if width <= 0 {
		width = 80
	}
	widths := columnWidths(defs, width-len(defs)+1)

	headers := make([]string, len(defs))
	for i, d := range defs {
		headers[i] = d.Title
	}

	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, StyleDim.MaxWidth(width).Render(title))
	lines = append(lines, StyleTableHeader.MaxWidth(width).Render(renderRow(headers, widths, defs)))
	for i, r := range rows {
		style := StyleTableRow
		if i%2 == 1 {
			style = StyleTableRowAlt
		}
		lines = append(lines, style.MaxWidth(width).Render(renderRow(r, widths, defs)))
	}
	return strings.Join(lines, "\n")
}
