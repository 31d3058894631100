package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	ErrEmptySnapshot  = errors.New("snapshot has no header row")
	ErrMissingColumns = errors.New("missing required columns")
	ErrMalformed      = errors.New("malformed snapshot")
	ErrTooManyRows    = errors.New("snapshot exceeds row limit")
)
