package repository

import (
	"context"

	"goout/internal/model"
)

// ResourceRepository is the document store for every resource kind.
// No business logic here, only persistence.
type ResourceRepository interface {
	// Create stores a new resource. The store assigns ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, res *model.Resource) (*model.Resource, error)

	// FindByID returns ErrNotFound when kind has no such resource.
	FindByID(ctx context.Context, kind, id string) (*model.Resource, error)

	// List returns one page of matches sorted newest first and the match total.
	List(ctx context.Context, q ListQuery) (*PageResult[model.Resource], error)

	// Delete removes the resource and returns it as it was stored.
	// A second delete of the same id yields ErrNotFound.
	Delete(ctx context.Context, kind, id string) (*model.Resource, error)

	// Ping checks the store is reachable.
	Ping(ctx context.Context) error
}

// ListQuery composes a filtered listing. Every clause is ANDed; zero-valued
// clauses impose no constraint.
type ListQuery struct {
	Kind string

	// Search is matched case-insensitively as a substring of any SearchFields.
	Search       string
	SearchFields []string

	Equals   []Match
	Contains []Match
	Ranges   []Range

	OwnerID string

	Limit  int
	Offset int
}

// Match pairs an attribute with the value it must equal or contain.
type Match struct {
	Field string
	Value string
}

// Range bounds a numeric attribute inclusively. Nil bounds are open.
type Range struct {
	Field string
	Min   *float64
	Max   *float64
}
