package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/attendance-tracker/internal/persistence"
)

func TestMapRepoError(t *testing.T) {
	unexpected := errors.New("boom")

	tests := map[string]struct {
		err      error
		field    string
		expected error
		vField   string
	}{
		"nil":                   {err: nil, expected: nil},
		"application not found": {err: ErrNotFound, expected: ErrNotFound},
		"persistence not found": {err: fmt.Errorf("get: %w", persistence.ErrNotFound), expected: ErrNotFound},
		"conflict":              {err: persistence.ErrConflict, expected: ErrAlreadyExists},
		"foreign key":           {err: persistence.ErrForeignKeyViolation, field: "location_id", expected: &ValidationError{}, vField: "location_id"},
		"foreign key default":   {err: persistence.ErrForeignKeyViolation, expected: &ValidationError{}, vField: "id"},
		"constraint":            {err: persistence.ErrConstraintViolation, expected: &ValidationError{}, vField: "input"},
		"unexpected":            {err: unexpected, expected: unexpected},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			result := mapRepoError(tc.err, tc.field)

			switch expected := tc.expected.(type) {
			case nil:
				if result != nil {
					t.Fatalf("expected nil, got %v", result)
				}
			case *ValidationError:
				vErr, ok := result.(*ValidationError)
				if !ok {
					t.Fatalf("expected ValidationError, got %T", result)
				}
				if msg, ok := vErr.FieldErrors[tc.vField]; !ok || msg == "" {
					t.Fatalf("expected %s validation message, got %v", tc.vField, vErr.FieldErrors)
				}
			default:
				if !errors.Is(result, expected) {
					t.Fatalf("expected %v, got %v", expected, result)
				}
			}
		})
	}
}
