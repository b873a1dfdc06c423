package model

import (
	"math"
	"sort"
	"strings"
)

// Table is a reconstructed grid of cells sharing a header and column
// layout. The first row ingested becomes the header and fixes the column
// anchor positions; every later cell is assigned to the column whose anchor
// is nearest. Missing cells are represented by the empty string, so every
// row has exactly len(Head) entries.
type Table struct {
	Title string
	Head  []string
	Rows  [][]string

	columnPositions []float64
}

// AddRow ingests one clustered line, given as a map from horizontal
// position to cell text. The first row establishes the column anchors and
// is consumed as the header.
func (t *Table) AddRow(row map[float64]string) {
	if len(t.Head) == 0 {
		t.columnPositions = make([]float64, 0, len(row))
		for x := range row {
			t.columnPositions = append(t.columnPositions, x)
		}
		sort.Float64s(t.columnPositions)
	}
	formatted := t.formatRow(row)
	if len(t.Head) == 0 {
		t.Head = formatted
		return
	}
	t.Rows = append(t.Rows, formatted)
}

// formatRow aligns a positioned line to the fixed column anchors.
func (t *Table) formatRow(row map[float64]string) []string {
	result := make([]string, len(t.columnPositions))
	for x, text := range row {
		result[t.nearestColumn(x)] = text
	}
	return result
}

// nearestColumn returns the index of the anchor closest to position. Ties
// are broken by the first match in anchor order.
func (t *Table) nearestColumn(position float64) int {
	best := 0
	bestDist := math.Inf(1)
	for i, anchor := range t.columnPositions {
		if d := math.Abs(position - anchor); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// ColumnPositions returns the fixed column anchors established by the
// header row.
func (t *Table) ColumnPositions() []float64 {
	return t.columnPositions
}

// Empty reports whether the table has neither a header nor any data rows.
// A table that only carries a title is still considered empty.
func (t *Table) Empty() bool {
	return len(t.Head) == 0 && len(t.Rows) == 0
}

// String renders the table in a markdown-like format for logs and tests.
func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString(t.Title)
	sb.WriteString("\n|")
	sb.WriteString(strings.Join(t.Head, "|"))
	sb.WriteString("|\n")
	for _, row := range t.Rows {
		sb.WriteString("|")
		sb.WriteString(strings.Join(row, "|"))
		sb.WriteString("|\n")
	}
	return sb.String()
}
