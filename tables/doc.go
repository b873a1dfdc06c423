// Package tables reconstructs discrete tables from positioned text
// fragments.
//
// Reconstruction happens in two stages:
//
//  1. The [Clusterer] stacks all pages into one continuous coordinate space
//     and groups fragments by vertical position into [model.Elements].
//  2. The [Segmenter] walks the resulting lines in reading order and
//     decides table boundaries and titles using vertical-gap and
//     title-detection heuristics.
//
// The heuristics are deliberately fuzzy and tuned for loosely structured
// schedule documents: a line is only a data row if it has more than two
// distinct horizontal entries, a title is a short line whose text contains
// a date, and a vertical gap larger than [Config.GapThreshold] closes the
// current table. [MedianHigh] computes a document's expected inter-row
// spacing from the observed gaps, adapting to varying line pitch.
//
// All thresholds live in [Config] so they can be tuned per document family
// without touching the algorithm.
package tables
