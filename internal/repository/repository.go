// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, mongo) inside this directory.
package repository

import "errors"

// ErrNotFound is returned when no document matches the identifier, including
// identifiers the backend cannot parse.
var ErrNotFound = errors.New("resource not found")

// PageResult is a generic pagination result wrapper.
// Total counts every match, not only the returned page.
type PageResult[T any] struct {
	Items []T
	Total int
}
