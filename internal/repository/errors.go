package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert or update violates a unique
	// constraint (title, slug, transaction id, plate number, ...).
	ErrDuplicate = errors.New("duplicate entity")
)
