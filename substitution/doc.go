// Package substitution normalizes reconstructed tables into domain
// records.
//
// Normalization is a two-step process. [Clean] first repairs the raw cell
// text of every table: extraction noise (runs of trailing periods) is
// stripped, text is NFC-normalized, and rows with omitted date/weekday
// cells inherit them from the most recent row that had them. [Normalize]
// then maps the cleaned rows to [model.Substitution] records using the
// column semantics of the document's area, a closed variant over the IT
// layout (fixed date/weekday/lesson/teacher/subject/room/group/notes
// columns) and the standard layout (date in the table title, group in the
// first column).
package substitution
