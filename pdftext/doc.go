// Package pdftext adapts an external positioned-text extraction helper to
// the [ingest.Extractor] contract.
//
// The helper is any executable that reads a PDF on stdin and writes a JSON
// array of pages on stdout, each page carrying its media-box height and
// the positioned text fragments found on it:
//
//	[{"height": 842.0,
//	  "fragments": [{"text": "Klasse", "x": 56.7, "y": 780.2, "ox": 0, "oy": 0}, ...]},
//	 ...]
//
// Keeping the extraction primitive behind a process boundary keeps this
// repository free of PDF internals while still letting the binary run end
// to end.
package pdftext
