package substitution

import (
	"testing"
	"time"

	"github.com/bszet/vertretungsbot/model"
)

func day(t *testing.T, s string) int64 {
	t.Helper()
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		t.Fatal(err)
	}
	return d.Unix()
}

func TestCleanStripsTrailingDots(t *testing.T) {
	tab := &model.Table{
		Head: []string{"Klasse....", "Stunde"},
		Rows: [][]string{{"C1", "1", "Mathe...."}},
	}
	Clean([]*model.Table{tab})
	if tab.Head[0] != "Klasse" {
		t.Errorf("header dots not stripped: %q", tab.Head[0])
	}
	if tab.Rows[0][2] != "Mathe" {
		t.Errorf("cell dots not stripped: %q", tab.Rows[0][2])
	}
}

func TestCleanCarriesDateForward(t *testing.T) {
	tab := &model.Table{
		Head: []string{"Datum", "Tag", "Stunde"},
		Rows: [][]string{
			{"23.01.2023", "Mo", "1"},
			{"", "", "2"},
			{"24.01.2023", "Di", "1"},
			{"", "", "3"},
		},
	}
	Clean([]*model.Table{tab})
	if tab.Rows[1][0] != "23.01.2023" || tab.Rows[1][1] != "Mo" {
		t.Errorf("row 1 not carried forward: %v", tab.Rows[1])
	}
	if tab.Rows[3][0] != "24.01.2023" || tab.Rows[3][1] != "Di" {
		t.Errorf("carry-forward did not advance: %v", tab.Rows[3])
	}
}

func TestCleanLeavesRepeatedHeaders(t *testing.T) {
	tab := &model.Table{
		Rows: [][]string{
			{"C1", "1", "Mathe"},
			{"Klasse", "Stunde", "Fach"},
			{"C2", "2", "Info"},
		},
	}
	Clean([]*model.Table{tab})
	if tab.Rows[1][0] != "Klasse" {
		t.Errorf("repeated header row must stay recognizable: %v", tab.Rows[1])
	}
}

func TestNormalizeITLayout(t *testing.T) {
	tab := &model.Table{
		Title: "Mo 23.01.2023",
		Head:  []string{"Datum", "Tag", "Stunde", "Lehrer", "Fach", "Raum", "Klasse", "Info"},
		Rows: [][]string{
			{"23.01.2023", "Mo", "1", "Smith....", "Mathe", "B 101", "C_IT 20/3", ""},
			{"", "", "2", "Jones", "Info", "B 102", "C_IT 20/3", "Raumänderung"},
		},
	}

	subs, err := Normalize([]*model.Table{tab}, AreaIT)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 substitutions, got %d", len(subs))
	}
	want := model.Substitution{
		Group:   "C_IT 20/3",
		Day:     day(t, "23.01.2023"),
		Lesson:  1,
		Teacher: "Smith",
		Subject: "Mathe",
		Room:    "B 101",
		Area:    AreaIT,
		IsNew:   true,
	}
	if subs[0] != want {
		t.Errorf("first record = %+v, want %+v", subs[0], want)
	}
	if subs[1].Day != want.Day {
		t.Errorf("continuation row did not inherit the date: %+v", subs[1])
	}
	if subs[1].Notes != "Raumänderung" {
		t.Errorf("notes lost: %+v", subs[1])
	}
}

func TestNormalizeStandardLayout(t *testing.T) {
	tab := &model.Table{
		Title: "Mo 23.01.2023",
		Head:  []string{"Klasse", "Stunde", "Fach", "Raum", "Lehrer", "Info"},
		Rows: [][]string{
			{"BGy 21", "3", "Deutsch", "A 204", "Müller", ""},
			{"Klasse", "Stunde", "Fach", "Raum", "Lehrer", "Info"},
			{"BGy 22", "", "Englisch", "A 205", "Weber", "fällt aus"},
		},
	}

	subs, err := Normalize([]*model.Table{tab}, "bau")
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 {
		t.Fatalf("repeated header must be skipped; got %d records", len(subs))
	}
	if subs[0].Group != "BGy 21" || subs[0].Day != day(t, "23.01.2023") || subs[0].Lesson != 3 {
		t.Errorf("unexpected first record: %+v", subs[0])
	}
	if subs[0].Teacher != "Müller" || subs[0].Subject != "Deutsch" || subs[0].Room != "A 204" {
		t.Errorf("column mapping wrong: %+v", subs[0])
	}
	if subs[1].Lesson != 0 {
		t.Errorf("blank lesson should default to 0, got %d", subs[1].Lesson)
	}
	if subs[1].Area != "bau" {
		t.Errorf("area not tagged: %+v", subs[1])
	}
}

func TestNormalizeStandardLayoutNeedsDate(t *testing.T) {
	tab := &model.Table{
		Title: "Vertretungen",
		Rows:  [][]string{{"BGy 21", "3", "Deutsch", "A 204", "Müller", ""}},
	}
	if _, err := Normalize([]*model.Table{tab}, "bau"); err == nil {
		t.Fatal("expected error for title without a date")
	}
}

func TestNormalizeITLayoutRejectsShortRows(t *testing.T) {
	tab := &model.Table{
		Rows: [][]string{{"23.01.2023", "Mo", "1"}},
	}
	if _, err := Normalize([]*model.Table{tab}, AreaIT); err == nil {
		t.Fatal("expected error for truncated IT row")
	}
}
