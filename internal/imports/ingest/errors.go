// Package ingest turns inconsistently formatted lead spreadsheets into canonical
// lead records and projects them for storage.
//
// The flow is strictly forward: LoadGrid, Extract, LocateDataStart,
// Canonicalize, Filter, and finally Commit once the caller confirms.
package ingest

import "errors"

var (
	// ErrUnreadableSheet means the file could not be decoded or no extraction
	// strategy produced a single row.
	ErrUnreadableSheet = errors.New("unreadable sheet")
	// ErrNoData means extraction worked but every row was blank.
	ErrNoData = errors.New("no data found")
	// ErrEmptyBatch rejects a commit with nothing to write.
	ErrEmptyBatch = errors.New("empty batch")
)
