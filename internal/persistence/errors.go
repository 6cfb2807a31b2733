package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrConstraintViolation is returned when a record is missing required fields
	// or breaks a check/foreign key constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrConflict is returned when a write collides with a unique index, such as
	// a second open attendance row for the same user.
	ErrConflict = errors.New("persistence: conflict")
	// ErrForeignKeyViolation is returned when a write references a missing row
	// or a delete would orphan dependent rows.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)
