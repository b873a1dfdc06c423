package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bszet/vertretungsbot/model"
	"github.com/bszet/vertretungsbot/store"
	"github.com/bszet/vertretungsbot/substitution"
	"github.com/bszet/vertretungsbot/tables"
)

// Source lists and retrieves remote plan documents.
type Source interface {
	ListDocuments(ctx context.Context) ([]model.Document, error)
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Extractor turns a document's raw bytes into positioned text fragments
// grouped by page. This is the external positioned-text extraction
// primitive; the pipeline makes no assumption about how it is implemented.
type Extractor interface {
	Extract(ctx context.Context, raw []byte) ([]model.Page, error)
}

// Notifier delivers pending agendas. Push runs after every ingestion
// pass and decides itself which subscribers need a delivery.
type Notifier interface {
	Push(ctx context.Context) error
}

// Updater runs the ingestion loop.
type Updater struct {
	source    Source
	extractor Extractor
	store     *store.Store
	notifier  Notifier
	log       *slog.Logger

	clusterer *tables.Clusterer
	segmenter *tables.Segmenter

	// last successfully processed modification time per document name
	watermarks map[string]time.Time
}

// NewUpdater creates an updater. The notifier may be nil, in which case
// changes are persisted but nobody is told.
func NewUpdater(source Source, extractor Extractor, st *store.Store, notifier Notifier, log *slog.Logger) *Updater {
	if log == nil {
		log = slog.Default()
	}
	return &Updater{
		source:     source,
		extractor:  extractor,
		store:      st,
		notifier:   notifier,
		log:        log,
		clusterer:  tables.NewClusterer(),
		segmenter:  tables.NewSegmenter(),
		watermarks: make(map[string]time.Time),
	}
}

// Run polls at the given interval until the context is cancelled.
func (u *Updater) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := u.RunOnce(ctx); err != nil {
			u.log.Error("ingestion pass failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce performs one ingestion pass and then asks the notifier to
// deliver pending agendas. Documents are processed in the order the
// listing reports them; a failing document is skipped for this pass and
// retried on the next one. The returned error covers listing, persistence
// and notification failures only.
func (u *Updater) RunOnce(ctx context.Context) error {
	docs, err := u.source.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	var persistErr error
	for _, doc := range docs {
		if !doc.LastModified.After(u.watermarks[doc.Name]) {
			continue
		}
		changed, err := u.processDocument(ctx, doc)
		if err != nil {
			// document-local failure: keep the watermark so the next
			// pass retries, but do not abort the batch
			u.log.Warn("skipping document", "name", doc.Name, "error", err)
			if changed {
				// records were written before the failure; the change
				// signal must not be masked
				persistErr = err
			}
			continue
		}
		u.watermarks[doc.Name] = doc.LastModified
	}

	// Push on every pass, not only when a document changed: subscribers
	// also become stale outside ingestion (a fresh group selection resets
	// their watermark) and must be drained on the next tick.
	if u.notifier != nil {
		if err := u.notifier.Push(ctx); err != nil {
			return fmt.Errorf("notifying subscribers: %w", err)
		}
	}
	return persistErr
}

// processDocument runs one document through the pipeline. The returned
// bool reports whether any group's content changed, even when an error
// interrupted the batch halfway.
func (u *Updater) processDocument(ctx context.Context, doc model.Document) (bool, error) {
	raw, err := u.source.Fetch(ctx, doc.Name)
	if err != nil {
		return false, err
	}
	pages, err := u.extractor.Extract(ctx, raw)
	if err != nil {
		return false, fmt.Errorf("extracting text: %w", err)
	}

	elements := u.clusterer.Cluster(pages)
	tabs, err := u.segmenter.Segment(elements)
	if err != nil {
		return false, err
	}
	u.log.Debug("segmented document",
		"name", doc.Name,
		"tables", len(tabs),
		"rowPitch", tables.RowSpacing(elements, tables.DefaultConfig().TitleColumnLimit))

	subs, err := substitution.Normalize(tabs, doc.Area)
	if err != nil {
		return false, err
	}

	groups, err := u.store.ChangedGroups(ctx, subs)
	if err != nil {
		return len(groups) > 0, err
	}
	if len(groups) > 0 {
		u.log.Info("document changed groups", "name", doc.Name, "groups", groups)
	}
	return len(groups) > 0, nil
}
