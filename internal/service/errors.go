package service

import "errors"

var (
	// ErrTaskNotFound is returned when a task does not exist or is not
	// owned by the caller. The two cases are deliberately not
	// distinguishable, so foreign ids never leak existence.
	ErrTaskNotFound = errors.New("task not found")

	// ErrParentNotFound is returned when a referenced parent task does
	// not exist or is not owned by the caller.
	ErrParentNotFound = errors.New("parent task not found")

	// ErrOwnershipMismatch is returned when a create names an owner other
	// than the authenticated caller.
	ErrOwnershipMismatch = errors.New("user id mismatch")

	// ErrCyclicMove is returned when a move would place a task under its
	// own descendant.
	ErrCyclicMove = errors.New("move would create a cycle")

	// ErrInvalidInput is returned for bodies that fail field validation.
	ErrInvalidInput = errors.New("invalid input")
)
