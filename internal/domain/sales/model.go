// Package sales provides the sale, sale-line and credit domain logic.
package sales

import (
	"context"
	"time"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/types"
)

// PaymentStatus tracks how much of a sale has been settled.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
	PaymentUnpaid  PaymentStatus = "unpaid"
)

// Sale is a completed checkout transaction. Never hard-deleted: the
// DeletedAt timestamp is the soft-delete marker.
type Sale struct {
	ID            id.ID         `db:"id" json:"id"`
	OwnerID       id.ID         `db:"owner_id" json:"ownerId"`
	CustomerName  *string       `db:"customer_name" json:"customerName,omitempty"`
	FinalAmount   types.Money   `db:"final_amount" json:"finalAmount"`
	PaidAmount    types.Money   `db:"paid_amount" json:"paidAmount"`
	PaymentStatus PaymentStatus `db:"payment_status" json:"paymentStatus"`
	SoldAt        time.Time     `db:"sold_at" json:"soldAt"`
	DeletedAt     *time.Time    `db:"deleted_at" json:"-"`
	Version       int           `db:"version" json:"version"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`

	// Loaded relation
	Items []SaleItem `db:"-" json:"items,omitempty"`
}

// NewSale creates a sale with generated ID and timestamps.
func NewSale(ownerID id.ID) *Sale {
	now := time.Now().UTC()
	return &Sale{
		ID:        id.New(),
		OwnerID:   ownerID,
		SoldAt:    now,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks sale invariants.
func (s *Sale) Validate(ctx context.Context) error {
	if id.IsNil(s.OwnerID) {
		return apperror.NewValidation("sale requires an owner").WithDetail("field", "ownerId")
	}
	if s.FinalAmount.IsNegative() {
		return apperror.NewValidation("final amount must not be negative")
	}
	if s.PaidAmount.IsNegative() {
		return apperror.NewValidation("paid amount must not be negative")
	}
	return nil
}

// IsDeleted reports whether the sale is soft-deleted.
func (s *Sale) IsDeleted() bool {
	return s.DeletedAt != nil
}

// Outstanding returns the unpaid remainder, clamped at zero.
func (s *Sale) Outstanding() types.Money {
	return types.PositiveOrZero(s.FinalAmount.Sub(s.PaidAmount))
}

// DerivePaymentStatus recomputes PaymentStatus from the amounts.
func (s *Sale) DerivePaymentStatus() {
	switch {
	case s.PaidAmount.GreaterThanOrEqual(s.FinalAmount):
		s.PaymentStatus = PaymentPaid
	case s.PaidAmount.IsPositive():
		s.PaymentStatus = PaymentPartial
	default:
		s.PaymentStatus = PaymentUnpaid
	}
}

// IsCustomerCredit reports whether the sale contributes credit exposure:
// a named customer with an unsettled balance.
func (s *Sale) IsCustomerCredit() bool {
	return s.CustomerName != nil && *s.CustomerName != "" && s.PaymentStatus != PaymentPaid
}

// Touch updates the UpdatedAt timestamp and increments version.
func (s *Sale) Touch() {
	s.UpdatedAt = time.Now().UTC()
	s.Version++
}

// SaleItem is one line of a sale. Profit is precomputed per line:
// (unit price − purchase price) × quantity.
type SaleItem struct {
	ID            id.ID       `db:"id" json:"id"`
	SaleID        id.ID       `db:"sale_id" json:"saleId"`
	ProductName   string      `db:"product_name" json:"productName"`
	Quantity      int         `db:"quantity" json:"quantity"`
	UnitPrice     types.Money `db:"unit_price" json:"unitPrice"`
	PurchasePrice types.Money `db:"purchase_price" json:"purchasePrice"`
	Profit        types.Money `db:"profit" json:"profit"`
	// IsReturn marks a returned line: kept for tracking, excluded from
	// all revenue and profit aggregation.
	IsReturn  bool `db:"is_return" json:"isReturn"`
	IsDeleted bool `db:"is_deleted" json:"isDeleted"`
}

// NewSaleItem creates a line with computed profit.
func NewSaleItem(saleID id.ID, productName string, qty int, unitPrice, purchasePrice types.Money) SaleItem {
	qtyM := types.NewMoney(float64(qty))
	return SaleItem{
		ID:            id.New(),
		SaleID:        saleID,
		ProductName:   productName,
		Quantity:      qty,
		UnitPrice:     unitPrice,
		PurchasePrice: purchasePrice,
		Profit:        unitPrice.Sub(purchasePrice).Mul(qtyM),
	}
}

// Validate checks line invariants.
func (i *SaleItem) Validate(ctx context.Context) error {
	if i.ProductName == "" {
		return apperror.NewValidation("line requires a product name")
	}
	if i.Quantity <= 0 {
		return apperror.NewValidation("line quantity must be positive").
			WithDetail("product", i.ProductName)
	}
	return nil
}

// CountsTowardTotals reports whether the line participates in aggregation.
func (i *SaleItem) CountsTowardTotals() bool {
	return !i.IsReturn && !i.IsDeleted
}

// CreditType distinguishes standalone cash credits from sale-linked exposure.
type CreditType string

const (
	CreditCash CreditType = "cash"
	CreditSale CreditType = "sale"
)

// Credit is an open balance owed by a customer.
type Credit struct {
	ID              id.ID       `db:"id" json:"id"`
	OwnerID         id.ID       `db:"owner_id" json:"ownerId"`
	CustomerName    string      `db:"customer_name" json:"customerName"`
	CreditType      CreditType  `db:"credit_type" json:"creditType"`
	OriginalAmount  types.Money `db:"original_amount" json:"originalAmount"`
	RemainingAmount types.Money `db:"remaining_amount" json:"remainingAmount"`
	SaleID          *id.ID      `db:"sale_id" json:"saleId,omitempty"`
	Version         int         `db:"version" json:"version"`
	CreatedAt       time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updatedAt"`
}

// NewCashCredit creates a standalone cash credit.
func NewCashCredit(ownerID id.ID, customerName string, amount types.Money) *Credit {
	now := time.Now().UTC()
	return &Credit{
		ID:              id.New(),
		OwnerID:         ownerID,
		CustomerName:    customerName,
		CreditType:      CreditCash,
		OriginalAmount:  amount,
		RemainingAmount: amount,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Validate checks credit invariants.
func (c *Credit) Validate(ctx context.Context) error {
	if c.CustomerName == "" {
		return apperror.NewValidation("credit requires a customer name")
	}
	if c.OriginalAmount.IsNegative() || c.RemainingAmount.IsNegative() {
		return apperror.NewValidation("credit amounts must not be negative")
	}
	return nil
}

// ApplyPayment reduces the remaining balance.
func (c *Credit) ApplyPayment(amount types.Money) error {
	if amount.LessThanOrEqual(types.Zero()) {
		return apperror.NewValidation("payment must be positive")
	}
	if amount.GreaterThan(c.RemainingAmount) {
		return apperror.NewBusinessRule(apperror.CodeCreditOverpayment, "payment exceeds remaining balance").
			WithDetail("remaining", c.RemainingAmount.String()).
			WithDetail("payment", amount.String())
	}
	c.RemainingAmount = c.RemainingAmount.Sub(amount)
	c.UpdatedAt = time.Now().UTC()
	c.Version++
	return nil
}
