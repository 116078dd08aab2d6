package units

import "errors"

var (
	// ErrNotFound is returned when a unit does not exist.
	ErrNotFound = errors.New("units: not found")
	// ErrDuplicateUnitID is returned when creating a unit whose business
	// id is already taken.
	ErrDuplicateUnitID = errors.New("units: duplicate unit id")
	// ErrEmptyID is returned when an operation requires an id.
	ErrEmptyID = errors.New("units: empty id")
)
