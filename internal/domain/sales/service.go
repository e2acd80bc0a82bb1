package sales

import (
	"context"
	"fmt"
	"time"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/tx"
	"shopdesk/internal/core/types"
	"shopdesk/pkg/logger"
)

// Service provides sale and credit business logic.
type Service struct {
	sales     SaleRepository
	credits   CreditRepository
	txManager tx.Manager
}

// NewService creates a sales service.
func NewService(sales SaleRepository, credits CreditRepository, txManager tx.Manager) *Service {
	return &Service{sales: sales, credits: credits, txManager: txManager}
}

// CheckoutLine is one requested line at checkout.
type CheckoutLine struct {
	ProductName   string
	Quantity      int
	UnitPrice     types.Money
	PurchasePrice types.Money
}

// CheckoutRequest describes a new sale.
type CheckoutRequest struct {
	CustomerName *string
	PaidAmount   types.Money
	SoldAt       *time.Time // defaults to now
	Lines        []CheckoutLine
}

// Checkout records a completed sale with its lines and derives the payment
// status from the paid amount. An unpaid named-customer sale becomes credit
// exposure on the dashboard without any extra row: exposure is derived from
// the sale itself.
func (s *Service) Checkout(ctx context.Context, ownerID id.ID, req CheckoutRequest) (*Sale, error) {
	if len(req.Lines) == 0 {
		return nil, apperror.NewValidation("sale requires at least one line")
	}

	sale := NewSale(ownerID)
	sale.CustomerName = req.CustomerName
	sale.PaidAmount = req.PaidAmount
	if req.SoldAt != nil {
		sale.SoldAt = req.SoldAt.UTC()
	}

	total := types.Zero()
	for _, line := range req.Lines {
		item := NewSaleItem(sale.ID, line.ProductName, line.Quantity, line.UnitPrice, line.PurchasePrice)
		if err := item.Validate(ctx); err != nil {
			return nil, err
		}
		qty := types.NewMoney(float64(line.Quantity))
		total = total.Add(line.UnitPrice.Mul(qty))
		sale.Items = append(sale.Items, item)
	}
	sale.FinalAmount = total
	sale.DerivePaymentStatus()

	if err := sale.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.sales.Create(ctx, sale)
	})
	if err != nil {
		return nil, fmt.Errorf("record sale: %w", err)
	}

	logger.Info(ctx, "sale recorded",
		"sale_id", sale.ID, "amount", sale.FinalAmount.String(), "status", sale.PaymentStatus)
	return sale, nil
}

// GetSale loads a sale with lines.
func (s *Service) GetSale(ctx context.Context, ownerID, saleID id.ID) (*Sale, error) {
	return s.sales.GetByID(ctx, ownerID, saleID)
}

// ListSales lists the owner's sales.
func (s *Service) ListSales(ctx context.Context, ownerID id.ID, filter ListFilter) ([]Sale, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.sales.List(ctx, ownerID, filter)
}

// RecordPayment adds a payment against a sale and re-derives status.
func (s *Service) RecordPayment(ctx context.Context, ownerID, saleID id.ID, amount types.Money) (*Sale, error) {
	if amount.LessThanOrEqual(types.Zero()) {
		return nil, apperror.NewValidation("payment must be positive")
	}
	sale, err := s.sales.GetByID(ctx, ownerID, saleID)
	if err != nil {
		return nil, err
	}
	if sale.IsDeleted() {
		return nil, apperror.NewBusinessRule(apperror.CodeSaleAlreadyDeleted, "cannot pay a deleted sale")
	}

	sale.PaidAmount = sale.PaidAmount.Add(amount)
	sale.DerivePaymentStatus()
	sale.Touch()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.sales.Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// ReturnLine flags one line as returned. The line stays on the invoice for
// tracking but drops out of every revenue/profit aggregate, and the sale
// total is reduced by the line's revenue.
func (s *Service) ReturnLine(ctx context.Context, ownerID, saleID, itemID id.ID) (*Sale, error) {
	sale, err := s.sales.GetByID(ctx, ownerID, saleID)
	if err != nil {
		return nil, err
	}
	if sale.IsDeleted() {
		return nil, apperror.NewBusinessRule(apperror.CodeSaleAlreadyDeleted, "cannot modify a deleted sale")
	}

	var target *SaleItem
	for i := range sale.Items {
		if sale.Items[i].ID == itemID {
			target = &sale.Items[i]
			break
		}
	}
	if target == nil {
		return nil, apperror.NewNotFound("sale item", itemID.String())
	}
	if target.IsReturn {
		return sale, nil // idempotent
	}

	target.IsReturn = true
	lineRevenue := target.UnitPrice.Mul(types.NewMoney(float64(target.Quantity)))
	sale.FinalAmount = types.PositiveOrZero(sale.FinalAmount.Sub(lineRevenue))
	sale.DerivePaymentStatus()
	sale.Touch()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.sales.UpdateItem(ctx, target); err != nil {
			return fmt.Errorf("flag return: %w", err)
		}
		if err := s.sales.Update(ctx, sale); err != nil {
			return fmt.Errorf("update sale total: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// DeleteSale soft-deletes a sale. Deleted sales are excluded from all
// aggregation but remain queryable for audit.
func (s *Service) DeleteSale(ctx context.Context, ownerID, saleID id.ID) error {
	sale, err := s.sales.GetByID(ctx, ownerID, saleID)
	if err != nil {
		return err
	}
	if sale.IsDeleted() {
		return apperror.NewBusinessRule(apperror.CodeSaleAlreadyDeleted, "sale already deleted")
	}
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.sales.SoftDelete(ctx, ownerID, saleID, time.Now().UTC())
	})
}

// --- Credits ---

// OpenCashCredit records a standalone cash credit.
func (s *Service) OpenCashCredit(ctx context.Context, ownerID id.ID, customerName string, amount types.Money) (*Credit, error) {
	credit := NewCashCredit(ownerID, customerName, amount)
	if err := credit.Validate(ctx); err != nil {
		return nil, err
	}
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.credits.Create(ctx, credit)
	})
	if err != nil {
		return nil, err
	}
	return credit, nil
}

// ReceiveCreditPayment reduces a credit's remaining balance.
func (s *Service) ReceiveCreditPayment(ctx context.Context, ownerID, creditID id.ID, amount types.Money) (*Credit, error) {
	credit, err := s.credits.GetByID(ctx, ownerID, creditID)
	if err != nil {
		return nil, err
	}
	if err := credit.ApplyPayment(amount); err != nil {
		return nil, err
	}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.credits.Update(ctx, credit)
	})
	if err != nil {
		return nil, err
	}
	return credit, nil
}

// ListCredits lists the owner's credits, optionally by type ("" for all).
func (s *Service) ListCredits(ctx context.Context, ownerID id.ID, creditType CreditType) ([]Credit, error) {
	return s.credits.ListByOwner(ctx, ownerID, creditType)
}
