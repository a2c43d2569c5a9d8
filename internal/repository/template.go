package repository

import (
	"context"

	"docforge/internal/model"
)

// TemplateRepository defines data access for template metadata using SQL
// queries only. No business logic here — strictly persistence operations.
type TemplateRepository interface {
	// Create inserts a new template record and returns the stored row.
	Create(ctx context.Context, tmpl *model.Template) (*model.Template, error)

	// FindByID returns a template by its ID.
	FindByID(ctx context.Context, id string) (*model.Template, error)

	// FindByName returns a template by its stored (generated) name.
	FindByName(ctx context.Context, name string) (*model.Template, error)

	// List returns a paginated list of templates and a total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Template], error)

	// Delete removes a template by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
