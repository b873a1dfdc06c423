// Package store implements the synchronization engine on top of SQLite.
//
// The store owns the lifecycle of groups and substitutions and the
// last-seen watermark of subscribers. All mutation goes through the
// operations defined here so the change-timestamp invariants hold: a
// substitution write only counts as a change when content actually
// differs, a group's last_update advances exactly when one of its records
// changes, and a subscriber's last_update advances only after a confirmed
// delivery.
//
// The change-aware upsert is a single conditional statement
// (INSERT ... ON CONFLICT DO UPDATE ... WHERE <differs> RETURNING), so the
// "did anything change" signal is race-free under concurrent upserts;
// same-key upserts are serialized by SQLite's row-level atomicity.
package store
