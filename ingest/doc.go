// Package ingest drives the polling ingestion loop: list the remote plan
// directory, detect documents modified since their last known watermark,
// run each through extraction, table reconstruction and normalization,
// upsert the resulting records and fan the changes out to the notifier.
//
// A single document's failure (fetch, extraction or parsing) is logged
// and skipped without advancing that document's watermark, so the change
// is picked up again on the next tick. Persistence failures are surfaced
// to the caller of [Updater.RunOnce]; masking them would desynchronize the
// change-timestamp invariants.
package ingest
