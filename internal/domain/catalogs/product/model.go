// Package product provides the inventory product catalog.
package product

import (
	"context"
	"time"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/types"
)

// Product is one inventory catalog entry, owner-scoped.
type Product struct {
	ID      id.ID  `db:"id" json:"id"`
	OwnerID id.ID  `db:"owner_id" json:"ownerId"`
	Name    string `db:"name" json:"name"`
	SKU     string `db:"sku" json:"sku,omitempty"`
	// Category groups products on the dashboard; empty means uncategorized.
	Category      string      `db:"category" json:"category,omitempty"`
	SalePrice     types.Money `db:"sale_price" json:"salePrice"`
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`
	StockQty      int         `db:"stock_qty" json:"stockQty"`
	DeletionMark  bool        `db:"deletion_mark" json:"deletionMark"`
	Version       int         `db:"version" json:"version"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`
}

// New creates a product with generated ID and timestamps.
func New(ownerID id.ID, name string) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:        id.New(),
		OwnerID:   ownerID,
		Name:      name,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks product invariants.
func (p *Product) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("product name is required").WithDetail("field", "name")
	}
	if p.SalePrice.IsNegative() || p.PurchasePrice.IsNegative() {
		return apperror.NewValidation("product prices must not be negative")
	}
	if p.StockQty < 0 {
		return apperror.NewValidation("stock quantity must not be negative")
	}
	return nil
}

// Touch updates the timestamp and increments version.
func (p *Product) Touch() {
	p.UpdatedAt = time.Now().UTC()
	p.Version++
}
