package services

import "fmt"

// Error taxonomy shared by the lifecycle and stats engines. Handlers map each
// type to an HTTP status with errors.As.

// ValidationError: bad input shape or business-rule violation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError: referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// ForbiddenError: operation not allowed in the account's current state.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// ConflictError: operation would break referential integrity.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// PersistenceError: storage failure, FK violation, transaction rollback.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
