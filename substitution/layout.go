package substitution

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bszet/vertretungsbot/model"
)

// AreaIT is the area tag of the IT department, whose documents carry the
// date inside each row instead of the table title.
const AreaIT = "bs-it"

// dateLayout is the day format used throughout the documents.
const dateLayout = "02.01.2006"

// Layout maps a cleaned table's rows to substitution records. It is a
// closed variant: exactly the IT layout and the standard layout exist,
// selected by the document's area tag.
type Layout interface {
	Substitutions(t *model.Table, area string) ([]model.Substitution, error)
}

// LayoutFor returns the layout for the given area tag.
func LayoutFor(area string) Layout {
	if area == AreaIT {
		return itLayout{}
	}
	return standardLayout{}
}

// parseDay parses a document date and returns it as a day-truncated unix
// timestamp.
func parseDay(s string) (int64, error) {
	day, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return 0, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return day.Unix(), nil
}

// itLayout reads the fixed IT column order: date, weekday, lesson,
// teacher, subject, room, group, notes. Dates omitted on continuation rows
// have already been carried forward by the cleanup pass.
type itLayout struct{}

func (itLayout) Substitutions(t *model.Table, area string) ([]model.Substitution, error) {
	subs := make([]model.Substitution, 0, len(t.Rows))
	for _, row := range t.Rows {
		if len(row) < 8 {
			return nil, fmt.Errorf("IT row has %d columns, want 8: %q", len(row), row)
		}
		day, err := parseDay(row[0])
		if err != nil {
			return nil, err
		}
		lesson, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("parsing lesson %q: %w", row[2], err)
		}
		subs = append(subs, model.Substitution{
			Group:   row[6],
			Day:     day,
			Lesson:  lesson,
			Teacher: row[3],
			Subject: row[4],
			Room:    row[5],
			Notes:   row[7],
			Area:    area,
			IsNew:   true,
		})
	}
	return subs, nil
}

// standardLayout reads tables whose title carries the date ("Mo
// 23.01.2023") and whose rows are group, lesson, subject, room, teacher,
// notes. Repeated header rows inside the body are skipped; a blank lesson
// defaults to zero.
type standardLayout struct{}

func (standardLayout) Substitutions(t *model.Table, area string) ([]model.Substitution, error) {
	parts := strings.Fields(t.Title)
	if len(parts) < 2 {
		return nil, fmt.Errorf("table title %q carries no date", t.Title)
	}
	day, err := parseDay(parts[1])
	if err != nil {
		return nil, err
	}
	subs := make([]model.Substitution, 0, len(t.Rows))
	for _, row := range t.Rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("row has %d columns, want 6: %q", len(row), row)
		}
		if strings.Contains(row[0], headerMarker) {
			continue
		}
		lesson := 0
		if row[1] != "" {
			lesson, err = strconv.Atoi(row[1])
			if err != nil {
				return nil, fmt.Errorf("parsing lesson %q: %w", row[1], err)
			}
		}
		subs = append(subs, model.Substitution{
			Group:   row[0],
			Day:     day,
			Lesson:  lesson,
			Teacher: row[4],
			Subject: row[2],
			Room:    row[3],
			Notes:   row[5],
			Area:    area,
			IsNew:   true,
		})
	}
	return subs, nil
}
