package model

import "sort"

// TextFragment is one positioned run of text produced by the document
// source. X and Y are the device-space position of the run; OffsetX and
// OffsetY carry the text-space translation, which is either a small
// sub-line adjustment or an absolute placement depending on its magnitude
// (the clusterer decides which).
type TextFragment struct {
	Text    string  `json:"text"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	OffsetX float64 `json:"ox"`
	OffsetY float64 `json:"oy"`
}

// Page groups the fragments of one document page. Height is the page's
// media-box height, which the clusterer uses to stack pages into a single
// continuous coordinate space.
type Page struct {
	Height    float64        `json:"height"`
	Fragments []TextFragment `json:"fragments"`
}

// Elements maps a normalized vertical position to the text found at each
// horizontal position on that line. Rows are keyed by the unclustered
// vertical value; merging and distance comparison happen later, in the
// segmenter.
type Elements map[float64]map[float64]string

// Add records a piece of text at the given position. Text at an already
// occupied position replaces the previous value.
func (e Elements) Add(y, x float64, text string) {
	row := e[y]
	if row == nil {
		row = make(map[float64]string)
		e[y] = row
	}
	row[x] = text
}

// SortedRows returns all row positions in ascending order.
func (e Elements) SortedRows() []float64 {
	rows := make([]float64, 0, len(e))
	for y := range e {
		rows = append(rows, y)
	}
	sort.Float64s(rows)
	return rows
}
