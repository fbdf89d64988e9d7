package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("conflict")
	// ErrInvalidReference is returned when a write references a missing row
	// or a user whose role does not fit the relation.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrEmptyUpdate is returned when an update carries no field to change.
	ErrEmptyUpdate = errors.New("no fields to update")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// translateError maps Postgres constraint failures onto the store sentinels.
// The database message is kept so callers can surface it.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case pqUniqueViolation:
		return fmt.Errorf("%w: %s", ErrConflict, pqErr.Message)
	case pqForeignKeyViolation, pqCheckViolation:
		return fmt.Errorf("%w: %s", ErrInvalidReference, pqErr.Message)
	default:
		return err
	}
}
