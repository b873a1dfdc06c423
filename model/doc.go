// Package model provides the data types shared across the extraction
// pipeline and the synchronization engine.
//
// The pipeline-facing types ([TextFragment], [Page], [Elements], [Table])
// describe document content at increasing levels of structure: positioned
// glyph runs, per-page groups of runs, lines keyed by position, and finally
// reconstructed tables with a fixed column layout.
//
// The domain-facing types ([Substitution], [Group], [Subscriber],
// [Document]) are the records the synchronization engine persists and the
// front ends consume.
package model
