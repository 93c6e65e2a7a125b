package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrConflict indicates the entity is still referenced by other records.
	ErrConflict = errors.New("conflict")
	// ErrForbidden indicates the caller's role does not allow the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput is wrapped by validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientStock indicates a product cannot cover the requested quantity.
	ErrInsufficientStock = errors.New("insufficient stock")
)
