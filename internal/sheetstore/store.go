// Package sheetstore provides uniform load/save access to the tracking
// table across its backing store variants: a local CSV file, a Google
// Sheets range, or a postgres table. Every backend speaks the same
// weakly-typed contract: load returns the full table as strings, save is a
// full-table replace written header first.
package sheetstore

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors shared by all backends.
var (
	ErrStoreUnreachable = errors.New("store unreachable")
	ErrStoreRejected    = errors.New("store rejected request")
	ErrStoreTimeout     = errors.New("store timeout")
)

// Store is the data access interface. All table I/O goes through here.
type Store interface {
	// Load reads every row currently in the backing store. A reachable but
	// empty store yields an empty RawTable, not an error.
	Load(ctx context.Context) (RawTable, error)
	// Save clears the backing range and rewrites it from the given table,
	// header first. The entire dataset is transmitted on every call.
	Save(ctx context.Context, table RawTable) error
	Ping(ctx context.Context) error
}

// RawTable is a table as read from a backing store, before normalization.
// Cell types are not guaranteed by any backend, so everything is a string.
type RawTable struct {
	Header []string
	Rows   [][]string
	// Warnings collects non-fatal shape problems noticed while loading,
	// e.g. ragged rows that were padded or truncated.
	Warnings []string
}

// Empty reports whether the table carries no header and no rows.
func (t RawTable) Empty() bool {
	return len(t.Header) == 0 && len(t.Rows) == 0
}

// ColumnIndex maps each header name to its position.
func (t RawTable) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		idx[name] = i
	}
	return idx
}

// squareRows forces every data row to the header's width: shorter rows are
// padded with empty cells, longer rows truncated. Returns the squared rows
// plus a warning per adjustment kind.
func squareRows(header []string, rows [][]string) ([][]string, []string) {
	width := len(header)
	var warnings []string
	truncated, padded := 0, 0

	squared := make([][]string, 0, len(rows))
	for _, row := range rows {
		switch {
		case len(row) > width:
			truncated++
			squared = append(squared, row[:width])
		case len(row) < width:
			padded++
			full := make([]string, width)
			copy(full, row)
			squared = append(squared, full)
		default:
			squared = append(squared, row)
		}
	}
	if truncated > 0 {
		warnings = append(warnings, fmt.Sprintf("%d row(s) wider than the header were truncated to %d column(s)", truncated, width))
	}
	if padded > 0 {
		warnings = append(warnings, fmt.Sprintf("%d row(s) narrower than the header were padded with empty cells", padded))
	}
	return squared, warnings
}
