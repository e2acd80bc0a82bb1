package dto

import (
	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/types"
	"shopdesk/internal/domain/catalogs/product"
)

// ProductRequest for creating/updating products.
type ProductRequest struct {
	Name          string `json:"name" binding:"required"`
	SKU           string `json:"sku"`
	Category      string `json:"category"`
	SalePrice     string `json:"salePrice"`
	PurchasePrice string `json:"purchasePrice"`
	StockQty      int    `json:"stockQty"`
	Version       int    `json:"version"` // required for update
}

// Apply writes the request onto a product.
func (r ProductRequest) Apply(p *product.Product) error {
	p.Name = r.Name
	p.SKU = r.SKU
	p.Category = r.Category
	p.StockQty = r.StockQty

	if r.SalePrice != "" {
		sp, err := types.NewMoneyFromString(r.SalePrice)
		if err != nil {
			return apperror.NewValidation("invalid salePrice").WithDetail("value", r.SalePrice)
		}
		p.SalePrice = sp
	}
	if r.PurchasePrice != "" {
		pp, err := types.NewMoneyFromString(r.PurchasePrice)
		if err != nil {
			return apperror.NewValidation("invalid purchasePrice").WithDetail("value", r.PurchasePrice)
		}
		p.PurchasePrice = pp
	}
	return nil
}

// AdjustStockRequest for POST /products/:id/stock.
type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}
