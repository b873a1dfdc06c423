package tables

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bszet/vertretungsbot/model"
)

// datePattern recognizes date-bearing title rows ("Mo 23.01.2023").
var datePattern = regexp.MustCompile(`[a-zA-Z] [0-9]{2}\.[0-9]{2}\.[0-9]{2,4}`)

// Config holds the segmentation heuristics. The defaults match the
// document family this system was built for; tune per family, not per
// document.
type Config struct {
	// GapThreshold is the vertical distance since the last accepted data
	// row that closes the current table.
	GapThreshold float64

	// TitleColumnLimit is the maximum number of distinct horizontal
	// entries a line may have and still be a title candidate. Lines with
	// more entries are data rows.
	TitleColumnLimit int

	// TitlePattern decides whether a title candidate's joined text is a
	// genuine table title.
	TitlePattern *regexp.Regexp
}

// DefaultConfig returns the default segmentation configuration.
func DefaultConfig() Config {
	return Config{
		GapThreshold:     30, // position units
		TitleColumnLimit: 2,
		TitlePattern:     datePattern,
	}
}

// ParseError reports a document whose line structure cannot be segmented
// into tables.
type ParseError struct {
	// Position is the vertical position of the offending line.
	Position float64
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("segmenting row at %.1f: %s", e.Position, e.Reason)
}

// Segmenter splits a clustered line map into discrete tables.
type Segmenter struct {
	config Config
}

// NewSegmenter creates a segmenter with the default configuration.
func NewSegmenter() *Segmenter {
	return &Segmenter{config: DefaultConfig()}
}

// Configure sets the segmentation configuration.
func (s *Segmenter) Configure(config Config) {
	s.config = config
}

// Segment walks all lines in ascending position order and groups them into
// tables. A short line whose text matches the title pattern sets the
// current table's title; a data row is appended to the current table, or,
// when no title has been seen since the last table closed, to the
// previously finalized table. That fallback repairs trailing continuation
// rows split off by the gap heuristic; if it fires before any table
// exists, Segment returns a *ParseError.
func (s *Segmenter) Segment(elements model.Elements) ([]*model.Table, error) {
	var results []*model.Table
	current := &model.Table{}
	lastY := 0.0

	for _, y := range elements.SortedRows() {
		row := elements[y]
		if y-lastY > s.config.GapThreshold && !current.Empty() {
			results = append(results, current)
			current = &model.Table{}
		}
		if len(row) <= s.config.TitleColumnLimit {
			joined := joinByPosition(row)
			if s.config.TitlePattern.MatchString(joined) {
				current.Title = joined
			}
			continue
		}
		switch {
		case current.Title != "":
			current.AddRow(row)
		case len(results) > 0:
			results[len(results)-1].AddRow(row)
		default:
			return nil, &ParseError{Position: y, Reason: "data row before any titled table"}
		}
		lastY = y
	}

	if !current.Empty() {
		results = append(results, current)
	}
	return results, nil
}

// RowSpacing returns the document's expected inter-row spacing: the
// median-high of the gaps between consecutive data rows. It adapts to
// documents with varying line pitch and is zero when fewer than two data
// rows exist.
func RowSpacing(elements model.Elements, titleColumnLimit int) float64 {
	var lines []float64
	for y, row := range elements {
		if len(row) > titleColumnLimit {
			lines = append(lines, y)
		}
	}
	sort.Float64s(lines)
	gaps := make([]float64, 0, len(lines))
	for i := 1; i < len(lines); i++ {
		gaps = append(gaps, lines[i]-lines[i-1])
	}
	return MedianHigh(gaps)
}

// MedianHigh returns the median of values, picking the higher of the two
// middle values for even-length input. It returns zero for empty input.
func MedianHigh(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

// joinByPosition concatenates a line's cells in ascending horizontal
// order, separated by single spaces.
func joinByPosition(row map[float64]string) string {
	xs := make([]float64, 0, len(row))
	for x := range row {
		xs = append(xs, x)
	}
	sort.Float64s(xs)
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = row[x]
	}
	return strings.Join(parts, " ")
}
