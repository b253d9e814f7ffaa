package types

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError indicates a referenced feature, edge, or proposal does
// not exist in the current snapshot.
type NotFoundError struct {
	Kind string // "feature", "edge", "proposal"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ConflictError indicates a mutation collided with existing state, e.g.
// creating a feature whose id is already taken.
type ConflictError struct {
	Kind   string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %q: %s", e.Kind, e.ID, e.Reason)
	}
	return fmt.Sprintf("%s %q already exists", e.Kind, e.ID)
}

// ValidationError indicates a malformed graph file or mutation request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CycleError indicates a cyclic manifest/source reference chain was
// encountered while resolving a graph file.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic manifest reference: %s", strings.Join(e.Path, " → "))
}

// PersistenceError indicates an I/O failure reading or writing the
// graph file. These abort the whole operation; a corrupted or
// unreadable graph file is not safely recoverable in-process.
type PersistenceError struct {
	Op   string // "load" or "persist"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s graph at %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsCycle reports whether err is (or wraps) a CycleError.
func IsCycle(err error) bool {
	var target *CycleError
	return errors.As(err, &target)
}
