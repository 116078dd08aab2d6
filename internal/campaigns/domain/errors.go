package campaigns

import "errors"

var (
	// ErrNotFound is returned when a campaign does not exist.
	ErrNotFound = errors.New("campaigns: not found")
	// ErrEmptyID is returned when an operation requires an id.
	ErrEmptyID = errors.New("campaigns: empty id")
)
