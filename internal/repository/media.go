package repository

import (
	"context"

	"github.com/ats-ng/scmc-video-upload-api/internal/model"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.

// MediaRepository defines data access for media descriptors using SQL queries only.
// No business logic here, strictly persistence operations.
type MediaRepository interface {
	// Create inserts a new media descriptor record.
	// Returns the stored descriptor (may include values set by the DB).
	Create(ctx context.Context, m *model.Media) (*model.Media, error)

	// FindByID returns a media descriptor by its ID.
	FindByID(ctx context.Context, id string) (*model.Media, error)

	// List returns a paginated list of descriptors in insertion order
	// (upload time ascending, id ascending as tie-breaker) plus the total count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Media], error)

	// Delete removes a descriptor by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

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
