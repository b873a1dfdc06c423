package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bszet/vertretungsbot/model"
)

// groupActivitySeconds is the horizon for "recent" groups, roughly three
// months. Groups without a content change for longer are hidden from
// selection.
const groupActivitySeconds = 7777777

// ErrNoCredentials is returned when no document-source login is stored yet.
var ErrNoCredentials = errors.New("no credentials stored")

// AddSubscriber registers a subscriber if it does not exist yet.
func (s *Store) AddSubscriber(ctx context.Context, id int64, platform string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO user (uid, platform) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		id, platform,
	); err != nil {
		return fmt.Errorf("adding subscriber %d: %w", id, err)
	}
	return nil
}

// Subscriber returns the subscriber's current state.
func (s *Store) Subscriber(ctx context.Context, id int64, platform string) (model.Subscriber, error) {
	sub := model.Subscriber{ID: id, Platform: platform}
	var gid sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT gid, trusted, last_update FROM user WHERE uid = ? AND platform = ?`,
		id, platform,
	).Scan(&gid, &sub.Trusted, &sub.LastUpdate)
	if err != nil {
		return model.Subscriber{}, fmt.Errorf("loading subscriber %d: %w", id, err)
	}
	sub.GroupID = gid.String
	return sub, nil
}

// DeleteSubscriber removes a subscriber, used when the delivery channel
// permanently rejects them.
func (s *Store) DeleteSubscriber(ctx context.Context, id int64, platform string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM user WHERE uid = ? AND platform = ?`, id, platform,
	); err != nil {
		return fmt.Errorf("deleting subscriber %d: %w", id, err)
	}
	return nil
}

// TrustSubscriber marks a subscriber as verified.
func (s *Store) TrustSubscriber(ctx context.Context, id int64, platform string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE user SET trusted = 1 WHERE uid = ? AND platform = ?`, id, platform,
	); err != nil {
		return fmt.Errorf("trusting subscriber %d: %w", id, err)
	}
	return nil
}

// SetSubscriberGroup selects a group for the subscriber and resets their
// last-seen watermark to the epoch, forcing immediate re-delivery of all
// current substitutions for the new group.
func (s *Store) SetSubscriberGroup(ctx context.Context, id int64, platform, groupID string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE user SET gid = ?, last_update = 0 WHERE uid = ? AND platform = ?`,
		groupID, id, platform,
	); err != nil {
		return fmt.Errorf("selecting group for subscriber %d: %w", id, err)
	}
	return nil
}

// ClearSubscriberGroup removes the subscriber's group selection.
func (s *Store) ClearSubscriberGroup(ctx context.Context, id int64, platform string) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE user SET gid = NULL WHERE uid = ? AND platform = ?`, id, platform,
	); err != nil {
		return fmt.Errorf("clearing group of subscriber %d: %w", id, err)
	}
	return nil
}

// RecentGroups returns the ids of all groups that had a content change
// within the activity horizon, sorted ascending.
func (s *Store) RecentGroups(ctx context.Context) ([]string, error) {
	cutoff := s.now().Unix() - groupActivitySeconds
	rows, err := s.db.QueryContext(ctx,
		`SELECT gid FROM class WHERE last_update > ? ORDER BY gid`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying recent groups: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning group id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GroupExists reports whether a group with the given id is known.
func (s *Store) GroupExists(ctx context.Context, groupID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM class WHERE gid = ?`, groupID).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("checking group %q: %w", groupID, err)
	}
	return true, nil
}

// AddCredential stores a document-source login. Credentials are keyed by
// the numeric id carried in the password suffix ("...#NN"), so re-adding a
// known login is a no-op and the highest id is the current one.
func (s *Store) AddCredential(ctx context.Context, username, password string) error {
	id, err := credentialID(password)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials (yid, username, password) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		id, username, password,
	); err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}
	return nil
}

// LatestCredential returns the most recently issued document-source login.
func (s *Store) LatestCredential(ctx context.Context) (username, password string, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT username, password FROM credentials ORDER BY yid DESC LIMIT 1`,
	).Scan(&username, &password)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", "", ErrNoCredentials
	case err != nil:
		return "", "", fmt.Errorf("loading credential: %w", err)
	}
	return username, password, nil
}

func credentialID(password string) (int, error) {
	idx := strings.LastIndexByte(password, '#')
	if idx < 0 {
		return 0, fmt.Errorf("password carries no credential id")
	}
	id, err := strconv.Atoi(password[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("parsing credential id: %w", err)
	}
	return id, nil
}
