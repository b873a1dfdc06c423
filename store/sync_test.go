package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bszet/vertretungsbot/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// at pins the store clock to a fixed unix time.
func at(s *Store, unix int64) {
	s.now = func() time.Time { return time.Unix(unix, 0) }
}

func testSub() model.Substitution {
	return model.Substitution{
		Group:   "C_IT 20/3",
		Day:     100,
		Lesson:  1,
		Teacher: "Smith",
		Subject: "Mathe",
		Room:    "B 101",
		Area:    "bs-it",
	}
}

func groupUpdate(t *testing.T, s *Store, gid string) int64 {
	t.Helper()
	var v int64
	if err := s.db.QueryRow(`SELECT last_update FROM class WHERE gid = ?`, gid).Scan(&v); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestUpsertIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sub := testSub()

	at(s, 1000)
	changed, err := s.Upsert(ctx, sub)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("first upsert must report a change")
	}
	if got := groupUpdate(t, s, sub.Group); got != 1000 {
		t.Errorf("group last_update = %d, want 1000", got)
	}

	at(s, 2000)
	changed, err = s.Upsert(ctx, sub)
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Error("identical re-upsert must not report a change")
	}
	if got := groupUpdate(t, s, sub.Group); got != 1000 {
		t.Errorf("unchanged record must not advance the group, got %d", got)
	}
}

func TestUpsertContentChange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sub := testSub()

	at(s, 1000)
	if _, err := s.Upsert(ctx, sub); err != nil {
		t.Fatal(err)
	}

	at(s, 2000)
	sub.Teacher = "Jones"
	changed, err := s.Upsert(ctx, sub)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Error("content change must report a change")
	}
	if got := groupUpdate(t, s, sub.Group); got != 2000 {
		t.Errorf("group last_update = %d, want 2000", got)
	}

	var teacher string
	err = s.db.QueryRow(`SELECT teacher FROM substitution WHERE gid = ? AND day = ? AND lesson = ?`,
		sub.Group, sub.Day, sub.Lesson).Scan(&teacher)
	if err != nil {
		t.Fatal(err)
	}
	if teacher != "Jones" {
		t.Errorf("teacher = %q, want Jones", teacher)
	}
}

func TestChangedGroups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at(s, 1000)

	a1 := testSub()
	a2 := testSub()
	a2.Lesson = 2
	b := testSub()
	b.Group = "BGy 21"

	groups, err := s.ChangedGroups(ctx, []model.Substitution{a1, a2, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 || groups[0] != "C_IT 20/3" || groups[1] != "BGy 21" {
		t.Errorf("changed groups = %v", groups)
	}

	// identical batch: nothing changes
	groups, err = s.ChangedGroups(ctx, []model.Substitution{a1, a2, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 0 {
		t.Errorf("re-applied batch must change nothing, got %v", groups)
	}
}

func TestAgendaOrderingAndNewFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at(s, 1000)

	later := testSub()
	later.Day, later.Lesson = 2, 1
	earlier := testSub()
	earlier.Day, earlier.Lesson = 1, 3
	if _, err := s.ChangedGroups(ctx, []model.Substitution{later, earlier}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddSubscriber(ctx, 7, "tg"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSubscriberGroup(ctx, 7, "tg", "C_IT 20/3"); err != nil {
		t.Fatal(err)
	}

	subs, err := s.SubstitutionsForSubscriber(ctx, 7, "tg")
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 {
		t.Fatalf("expected 2 substitutions, got %d", len(subs))
	}
	if subs[0].Day != 1 || subs[0].Lesson != 3 || subs[1].Day != 2 || subs[1].Lesson != 1 {
		t.Errorf("not ordered by day then lesson: %+v", subs)
	}
	if !subs[0].IsNew || !subs[1].IsNew {
		t.Error("records must be new before the first delivery")
	}

	at(s, 2000)
	if err := s.MarkDelivered(ctx, 7, "tg"); err != nil {
		t.Fatal(err)
	}
	subs, err = s.SubstitutionsForSubscriber(ctx, 7, "tg")
	if err != nil {
		t.Fatal(err)
	}
	if subs[0].IsNew || subs[1].IsNew {
		t.Error("records must not be new after delivery")
	}

	if err := s.Reset(ctx, 7, "tg"); err != nil {
		t.Fatal(err)
	}
	subs, err = s.SubstitutionsForSubscriber(ctx, 7, "tg")
	if err != nil {
		t.Fatal(err)
	}
	if !subs[0].IsNew {
		t.Error("reset must mark everything new again")
	}
}

func TestAgendaRetentionWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at(s, 1000)

	old := testSub()
	old.Day = 500
	current := testSub()
	current.Day = 1_000_000
	current.Lesson = 2
	if _, err := s.ChangedGroups(ctx, []model.Substitution{old, current}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddSubscriber(ctx, 7, "tg"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSubscriberGroup(ctx, 7, "tg", "C_IT 20/3"); err != nil {
		t.Fatal(err)
	}

	// move past the old record's window
	at(s, 500+retentionSeconds+1)
	subs, err := s.SubstitutionsForSubscriber(ctx, 7, "tg")
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].Day != 1_000_000 {
		t.Errorf("expired record must be filtered, got %+v", subs)
	}
}

func TestStaleSubscribers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at(s, 1000)

	sub := testSub()
	sub.Day = 1_000_000
	if _, err := s.Upsert(ctx, sub); err != nil {
		t.Fatal(err)
	}

	if err := s.AddSubscriber(ctx, 1, "tg"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSubscriberGroup(ctx, 1, "tg", sub.Group); err != nil {
		t.Fatal(err)
	}
	// subscriber without a group selection never shows up
	if err := s.AddSubscriber(ctx, 2, "tg"); err != nil {
		t.Fatal(err)
	}

	ids, err := s.StaleSubscribers(ctx, "tg")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("stale subscribers = %v, want [1]", ids)
	}

	at(s, 2000)
	if err := s.MarkDelivered(ctx, 1, "tg"); err != nil {
		t.Fatal(err)
	}
	ids, err = s.StaleSubscribers(ctx, "tg")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("delivered subscriber must not be stale, got %v", ids)
	}
}

func TestStaleSubscribersSkipEmptyWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at(s, 1000)

	sub := testSub()
	sub.Day = 500
	if _, err := s.Upsert(ctx, sub); err != nil {
		t.Fatal(err)
	}
	if err := s.AddSubscriber(ctx, 1, "tg"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSubscriberGroup(ctx, 1, "tg", sub.Group); err != nil {
		t.Fatal(err)
	}

	// group changed after the watermark, but every record has expired
	at(s, 500+retentionSeconds+1)
	ids, err := s.StaleSubscribers(ctx, "tg")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("subscriber with an empty agenda must not be stale, got %v", ids)
	}
}

func TestSubscribersToNotify(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at(s, 1000)

	if _, err := s.Upsert(ctx, testSub()); err != nil {
		t.Fatal(err)
	}
	for _, id := range []int64{1, 2} {
		if err := s.AddSubscriber(ctx, id, "tg"); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SetSubscriberGroup(ctx, 1, "tg", "C_IT 20/3"); err != nil {
		t.Fatal(err)
	}

	subscribers, err := s.SubscribersToNotify(ctx, "C_IT 20/3")
	if err != nil {
		t.Fatal(err)
	}
	if len(subscribers) != 1 || subscribers[0].ID != 1 {
		t.Errorf("subscribers = %+v, want only id 1", subscribers)
	}
}
