package substitution

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/bszet/vertretungsbot/model"
)

// trailingDots matches the "....." filler runs that the justified table
// layout leaves at cell ends.
var trailingDots = regexp.MustCompile(`\.+$`)

// headerMarker identifies repeated header rows inside table bodies.
const headerMarker = "Klasse"

// Clean repairs the raw cell text of all tables in place. It must run
// before any column reinterpretation: the carry-forward of omitted
// date/weekday cells works on raw column positions, not on layout
// semantics.
func Clean(tabs []*model.Table) {
	for _, t := range tabs {
		cleanRow(t.Head)
		lastDate, lastDay := "", ""
		for _, row := range t.Rows {
			cleanRow(row)
			if len(row) < 2 {
				continue
			}
			if strings.Contains(row[0], headerMarker) {
				continue // keep repeated header rows intact for the layout to skip
			}
			if row[0] != "" {
				lastDate, lastDay = row[0], row[1]
			} else {
				row[0], row[1] = lastDate, lastDay
			}
		}
	}
}

func cleanRow(row []string) {
	for i, cell := range row {
		if cell == "" {
			continue
		}
		row[i] = trailingDots.ReplaceAllString(norm.NFC.String(cell), "")
	}
}

// Normalize cleans the given tables and maps their rows to substitution
// records using the layout selected by area. Records are returned in
// table-then-row order with IsNew set; the flag only becomes meaningful
// once the records have been persisted and re-read.
func Normalize(tabs []*model.Table, area string) ([]model.Substitution, error) {
	Clean(tabs)
	layout := LayoutFor(area)
	var subs []model.Substitution
	for _, t := range tabs {
		rows, err := layout.Substitutions(t, area)
		if err != nil {
			return nil, err
		}
		subs = append(subs, rows...)
	}
	return subs, nil
}
