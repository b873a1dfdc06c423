package model

import "time"

// Substitution is one schedule change addressed to a group. Its identity
// for persistence purposes is (Group, Day, Lesson).
type Substitution struct {
	Group   string
	Day     int64 // unix seconds, truncated to the day
	Lesson  int
	Teacher string
	Subject string
	Room    string
	Notes   string
	Area    string

	// IsNew is derived at read time by comparing the owning group's last
	// content update against the reading subscriber's last-seen timestamp.
	// It is never persisted; freshly normalized records carry true.
	IsNew bool
}

// Group is a subscriber-selectable class that substitutions are addressed
// to. Groups are created lazily on first ingest; LastUpdate advances
// whenever one of the group's substitutions is inserted or changes content.
type Group struct {
	ID         string
	Area       string
	LastUpdate int64
}

// Subscriber is a notification recipient on a chat platform. LastUpdate is
// the last-seen watermark: it advances after a confirmed delivery and is
// reset to zero when the subscriber changes group.
type Subscriber struct {
	ID         int64
	Platform   string
	GroupID    string
	Trusted    bool
	LastUpdate int64
}

// Document is one entry of the remote plan directory listing.
type Document struct {
	Name         string
	Area         string
	LastModified time.Time
}
