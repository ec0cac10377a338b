package models

import "errors"

var (
	// ErrInvalidInput means no term could be classified or a numeric field
	// did not coerce. Nothing is sent to the store.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the query ran and matched zero records.
	ErrNotFound = errors.New("student not found")
)
