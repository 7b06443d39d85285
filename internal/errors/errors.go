// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrTradeNotFound      = errors.New("trade not found")
	ErrAdjustmentNotFound = errors.New("balance adjustment not found")
	ErrDataNotFound       = errors.New("data not found")
	ErrDatabaseError      = errors.New("database error")
	ErrConfigInvalid      = errors.New("invalid configuration")
	ErrInputValidation    = errors.New("input validation failed")
	ErrEmptyImport        = errors.New("import contains no rows")
)

// ValidationError represents a validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s (%v): %s", e.Field, e.Value, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ImportRowError reports a malformed record inside an import batch, carrying
// the originating row index (1-based, excluding the header) and the broker
// ticket when one was readable.
type ImportRowError struct {
	Row    int
	Ticket string
	Err    error
}

func (e *ImportRowError) Error() string {
	if e.Ticket != "" {
		return fmt.Sprintf("import row %d [ticket %s]: %v", e.Row, e.Ticket, e.Err)
	}
	return fmt.Sprintf("import row %d: %v", e.Row, e.Err)
}

func (e *ImportRowError) Unwrap() error {
	return e.Err
}

// NewImportRowError creates a new ImportRowError.
func NewImportRowError(row int, ticket string, err error) *ImportRowError {
	return &ImportRowError{
		Row:    row,
		Ticket: ticket,
		Err:    err,
	}
}

// DataError represents a persistence-related error.
type DataError struct {
	Entity  string
	ID      string
	Message string
	Err     error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error [%s] %s: %s: %v", e.Entity, e.ID, e.Message, e.Err)
	}
	return fmt.Sprintf("data error [%s] %s: %s", e.Entity, e.ID, e.Message)
}

func (e *DataError) Unwrap() error {
	return e.Err
}

// NewDataError creates a new DataError.
func NewDataError(entity, id, message string, err error) *DataError {
	return &DataError{
		Entity:  entity,
		ID:      id,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
