package session

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the store
var (
	// ErrNotFound means the backing file of a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrIO covers read, write, rename and remove failures.
	ErrIO = errors.New("session i/o failure")

	// ErrValidation means user input was rejected before touching disk.
	ErrValidation = errors.New("invalid input")
)

// NotFoundError wraps ErrNotFound with the session location
type NotFoundError struct {
	Root    string
	Project string
	ID      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session %s/%s not found in %s", e.Project, e.ID, e.Root)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// IOError wraps a filesystem failure together with ErrIO
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}

// ValidationError reports a rejected input field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newIOError(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsIO checks if an error is an i/o error
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
