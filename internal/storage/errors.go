package storage

import "errors"

// Common errors returned by the storage package.
var (
	// ErrNilClient is returned when the elasticsearch client is not initialized.
	ErrNilClient = errors.New("elasticsearch client is not initialized")
	// ErrEmptyBatch is returned when a bulk index is attempted with no records.
	ErrEmptyBatch = errors.New("article batch is empty")
	// ErrIndexNotFound is returned when an operation targets a missing index.
	ErrIndexNotFound = errors.New("index not found")
)
