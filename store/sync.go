package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bszet/vertretungsbot/model"
)

// retentionSeconds is the trailing read window: substitutions whose day is
// older than roughly one day (minus a small slack) are excluded from
// subscriber-facing reads. A tunable horizon, not a correctness value.
const retentionSeconds = 86200

// Upsert ensures the owning group exists and inserts or updates the
// substitution, reporting whether anything changed. Content is compared on
// teacher, subject, room and notes; identical records cause no write. The
// owning group's last_update advances with every changed record, inside
// the same transaction as the record write.
func (s *Store) Upsert(ctx context.Context, sub model.Substitution) (changed bool, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO class (gid, area) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		sub.Group, sub.Area,
	); err != nil {
		return false, fmt.Errorf("ensuring group %q: %w", sub.Group, err)
	}

	now := s.now().Unix()
	var gid string
	err = tx.QueryRowContext(ctx,
		`INSERT INTO substitution (gid, day, lesson, teacher, subject, room, notes, last_update)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (gid, day, lesson) DO UPDATE SET
		   teacher = excluded.teacher, subject = excluded.subject,
		   room = excluded.room, notes = excluded.notes,
		   last_update = excluded.last_update
		 WHERE teacher <> excluded.teacher OR subject <> excluded.subject
		    OR room <> excluded.room OR notes <> excluded.notes
		 RETURNING gid`,
		sub.Group, sub.Day, sub.Lesson, sub.Teacher, sub.Subject, sub.Room, sub.Notes, now,
	).Scan(&gid)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// identical record already present, nothing written
		return false, tx.Commit()
	case err != nil:
		return false, fmt.Errorf("upserting substitution for %q: %w", sub.Group, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE class SET last_update = ? WHERE gid = ?`, now, sub.Group,
	); err != nil {
		return false, fmt.Errorf("advancing group %q: %w", sub.Group, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing upsert: %w", err)
	}
	return true, nil
}

// ChangedGroups upserts a batch of substitutions and returns the ids of
// groups that had at least one changed record. Failed upserts abort only
// their own record; their errors are joined and returned alongside the
// groups that did change.
func (s *Store) ChangedGroups(ctx context.Context, subs []model.Substitution) ([]string, error) {
	seen := make(map[string]bool)
	var groups []string
	var errs []error
	for _, sub := range subs {
		changed, err := s.Upsert(ctx, sub)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if changed && !seen[sub.Group] {
			seen[sub.Group] = true
			groups = append(groups, sub.Group)
		}
	}
	return groups, errors.Join(errs...)
}

// SubscribersToNotify returns all subscribers whose selected group is
// groupID.
func (s *Store) SubscribersToNotify(ctx context.Context, groupID string) ([]model.Subscriber, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uid, platform FROM user WHERE gid = ?`, groupID)
	if err != nil {
		return nil, fmt.Errorf("querying subscribers of %q: %w", groupID, err)
	}
	defer rows.Close()

	var subscribers []model.Subscriber
	for rows.Next() {
		sub := model.Subscriber{GroupID: groupID}
		if err := rows.Scan(&sub.ID, &sub.Platform); err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		subscribers = append(subscribers, sub)
	}
	return subscribers, rows.Err()
}

// SubstitutionsForSubscriber returns the subscriber's current agenda:
// substitutions of their selected group within the retention window,
// ordered by day then lesson ascending, with IsNew set when the group
// changed after the subscriber's last confirmed delivery.
func (s *Store) SubstitutionsForSubscriber(ctx context.Context, id int64, platform string) ([]model.Substitution, error) {
	cutoff := s.now().Unix() - retentionSeconds
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.gid, s.day, s.lesson, s.teacher, s.subject, s.room, s.notes, c.area,
		        u.last_update < c.last_update
		 FROM user u
		 JOIN substitution s ON s.gid = u.gid
		 JOIN class c ON c.gid = u.gid
		 WHERE u.uid = ? AND u.platform = ? AND s.day > ?
		 ORDER BY s.day, s.lesson ASC`,
		id, platform, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying substitutions for subscriber %d: %w", id, err)
	}
	defer rows.Close()

	var subs []model.Substitution
	for rows.Next() {
		var sub model.Substitution
		if err := rows.Scan(&sub.Group, &sub.Day, &sub.Lesson, &sub.Teacher,
			&sub.Subject, &sub.Room, &sub.Notes, &sub.Area, &sub.IsNew); err != nil {
			return nil, fmt.Errorf("scanning substitution: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// StaleSubscribers returns the subscribers on the given platform whose
// group changed after their last confirmed delivery and that have at least
// one substitution inside the retention window. This is the poll-driven
// "who needs a push" query.
func (s *Store) StaleSubscribers(ctx context.Context, platform string) ([]int64, error) {
	cutoff := s.now().Unix() - retentionSeconds
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT u.uid
		 FROM user u
		 JOIN class c ON c.gid = u.gid
		 WHERE u.platform = ? AND c.last_update > u.last_update
		   AND EXISTS (SELECT 1 FROM substitution s WHERE s.gid = u.gid AND s.day > ?)`,
		platform, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying stale subscribers: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning subscriber id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkDelivered advances the subscriber's last-seen watermark to now.
// Call only after a confirmed delivery.
func (s *Store) MarkDelivered(ctx context.Context, id int64, platform string) error {
	return s.setLastUpdate(ctx, id, platform, s.now().Unix())
}

// Reset forces the subscriber's last-seen watermark back to the epoch so
// the next read marks every current substitution as new.
func (s *Store) Reset(ctx context.Context, id int64, platform string) error {
	return s.setLastUpdate(ctx, id, platform, 0)
}

func (s *Store) setLastUpdate(ctx context.Context, id int64, platform string, value int64) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE user SET last_update = ? WHERE uid = ? AND platform = ?`,
		value, id, platform,
	); err != nil {
		return fmt.Errorf("setting watermark of subscriber %d: %w", id, err)
	}
	return nil
}
