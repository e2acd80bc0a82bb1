package sales

import (
	"context"
	"time"

	"shopdesk/internal/core/id"
)

// ListFilter narrows sale queries. All queries are owner-scoped.
type ListFilter struct {
	From           *time.Time
	To             *time.Time
	PaymentStatus  PaymentStatus // empty for all
	CustomerSearch string
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// SaleRepository persists sales and their lines.
type SaleRepository interface {
	// Create inserts the sale and all its lines.
	Create(ctx context.Context, sale *Sale) error

	// GetByID loads a sale with its lines.
	GetByID(ctx context.Context, ownerID, saleID id.ID) (*Sale, error)

	// Update modifies the sale header (with optimistic locking).
	Update(ctx context.Context, sale *Sale) error

	// UpdateItem modifies one line (return flag, delete flag).
	UpdateItem(ctx context.Context, item *SaleItem) error

	// SoftDelete stamps the sale deleted. Sales are never hard-deleted.
	SoftDelete(ctx context.Context, ownerID, saleID id.ID, at time.Time) error

	List(ctx context.Context, ownerID id.ID, filter ListFilter) ([]Sale, error)
}

// CreditRepository persists customer credits.
type CreditRepository interface {
	Create(ctx context.Context, credit *Credit) error
	GetByID(ctx context.Context, ownerID, creditID id.ID) (*Credit, error)
	Update(ctx context.Context, credit *Credit) error
	ListByOwner(ctx context.Context, ownerID id.ID, creditType CreditType) ([]Credit, error)
}
