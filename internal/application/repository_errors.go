package application

import (
	"errors"

	"github.com/example/attendance-tracker/internal/persistence"
)

// mapRepoError translates persistence sentinels into application errors.
// referenceField names the input field blamed for a foreign key violation.
func mapRepoError(err error, referenceField string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrConflict):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		vErr := &ValidationError{}
		if referenceField == "" {
			referenceField = "id"
		}
		vErr.add(referenceField, "references a record that does not exist or is still in use")
		return vErr
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("input", "violates a data constraint")
		return vErr
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
