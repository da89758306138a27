package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name     string
		s        string
		maxWidth int
		want     string
	}{
		{"empty string", "", 10, ""},
		{"fits exactly", "hello", 5, "hello"},
		{"fits shorter", "hi", 10, "hi"},
		{"one over", "hello!", 5, "he..."},
		{"long name", "Session Charge Time", 12, "Session C..."},
		{"width 0", "abc", 0, ""},
		{"width 1", "abc", 1, "a"},
		{"width 3", "abcd", 3, "abc"},
		{"width 4", "abcde", 4, "a..."},
		{"unicode truncated", "héllo world", 8, "héllo..."},
		{"wide chars fit", "中文", 4, "中文"},
		{"wide chars truncated", "中文测试", 5, "中..."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncateName(tc.s, tc.maxWidth)
			assert.Equal(t, tc.want, got)
			if tc.maxWidth > 0 {
				assert.LessOrEqual(t, runewidth.StringWidth(got), tc.maxWidth)
			}
		})
	}
}

func TestColumnWidths(t *testing.T) {
	assert.Nil(t, columnWidths(nil, 80))

	defs := []columnDef{{Title: "A", Width: 1}, {Title: "B", Width: 3}}
	assert.Equal(t, []int{20, 60}, columnWidths(defs, 80))

	// below the minimum every column still gets minColumnWidth
	assert.Equal(t, []int{minColumnWidth, minColumnWidth}, columnWidths(defs, 0))
	assert.Equal(t, []int{minColumnWidth, 7}, columnWidths(defs, 10))

	// zero weight counts as one
	zero := []columnDef{{Title: "A"}, {Title: "B"}}
	assert.Equal(t, []int{40, 40}, columnWidths(zero, 80))
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		totalRows, pageSize, want int
	}{
		{0, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{31, 10, 4},
		{5, 0, 1},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, pageCount(tc.totalRows, tc.pageSize), "pageCount(%d, %d)", tc.totalRows, tc.pageSize)
	}
}

func TestCurrentPageIndices(t *testing.T) {
	all := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	assert.Equal(t, []int{0, 1, 2, 3}, currentPageIndices(all, 0, 4))
	assert.Equal(t, []int{4, 5, 6, 7}, currentPageIndices(all, 1, 4))
	assert.Equal(t, []int{8, 9}, currentPageIndices(all, 2, 4))
	// page beyond range resets to start
	assert.Equal(t, []int{0, 1, 2, 3}, currentPageIndices(all, 5, 4))
	assert.Nil(t, currentPageIndices(nil, 0, 4))
}

func TestTableModel_Paging(t *testing.T) {
	m := newTableModel(readingColumns)
	m.pageSize = 10

	m = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, m.page, "cannot go before the first page")

	m = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 2, m.page)

	m.clampPage(15)
	assert.Equal(t, 1, m.page)

	m = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")})
	assert.Equal(t, 1, m.page)
}

func TestRenderRow_Alignment(t *testing.T) {
	defs := []columnDef{{Title: "Name", Align: "left"}, {Title: "Value", Align: "right"}}
	got := renderRow([]string{"ab", "7"}, []int{4, 4}, defs)
	assert.Equal(t, "ab      7", got)
}

func TestRenderTable(t *testing.T) {
	out := stripANSI(renderTable("Phases", phaseColumns, [][]string{
		{"L1", "230.0 V", "16.0 A", "3.68 kW", "---", "---"},
	}, 90))
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "Phases", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Voltage")
	assert.Contains(t, lines[2], "230.0 V")
}
