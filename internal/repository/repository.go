// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) and contain no business logic.
package repository

import "errors"

// ErrDuplicate is returned when an insert violates a uniqueness rule.
var ErrDuplicate = errors.New("duplicate record")

// ErrNotUpdated is returned when a conditional update matched no rows.
var ErrNotUpdated = errors.New("no rows updated")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
