package product

import (
	"context"

	"shopdesk/internal/core/id"
)

// ListFilter narrows product queries.
type ListFilter struct {
	Search         string
	Category       string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// Repository persists products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, ownerID, productID id.ID) (*Product, error)

	// Update modifies an existing product (with optimistic locking).
	Update(ctx context.Context, p *Product) error

	// SetDeletionMark soft-deletes or restores a product.
	SetDeletionMark(ctx context.Context, ownerID, productID id.ID, marked bool) error

	// AdjustStock applies a relative stock change (negative on sale).
	AdjustStock(ctx context.Context, ownerID, productID id.ID, delta int) error

	List(ctx context.Context, ownerID id.ID, filter ListFilter) ([]Product, error)
}
