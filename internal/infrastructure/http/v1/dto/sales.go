package dto

import (
	"time"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/types"
	"shopdesk/internal/domain/sales"
)

// CheckoutLineRequest is one requested line at checkout.
type CheckoutLineRequest struct {
	ProductName   string `json:"productName" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	UnitPrice     string `json:"unitPrice" binding:"required"`
	PurchasePrice string `json:"purchasePrice"`
}

// CheckoutRequest for POST /sales.
type CheckoutRequest struct {
	CustomerName *string               `json:"customerName"`
	PaidAmount   string                `json:"paidAmount"`
	SoldAt       *time.Time            `json:"soldAt"`
	Lines        []CheckoutLineRequest `json:"lines" binding:"required,min=1"`
}

// ToCheckoutRequest converts to the domain request.
func (r CheckoutRequest) ToCheckoutRequest() (sales.CheckoutRequest, error) {
	out := sales.CheckoutRequest{
		CustomerName: r.CustomerName,
		SoldAt:       r.SoldAt,
	}

	if r.PaidAmount != "" {
		paid, err := types.NewMoneyFromString(r.PaidAmount)
		if err != nil {
			return out, apperror.NewValidation("invalid paidAmount").WithDetail("value", r.PaidAmount)
		}
		out.PaidAmount = paid
	}

	for _, line := range r.Lines {
		unit, err := types.NewMoneyFromString(line.UnitPrice)
		if err != nil {
			return out, apperror.NewValidation("invalid unitPrice").WithDetail("product", line.ProductName)
		}
		purchase := types.Zero()
		if line.PurchasePrice != "" {
			purchase, err = types.NewMoneyFromString(line.PurchasePrice)
			if err != nil {
				return out, apperror.NewValidation("invalid purchasePrice").WithDetail("product", line.ProductName)
			}
		}
		out.Lines = append(out.Lines, sales.CheckoutLine{
			ProductName:   line.ProductName,
			Quantity:      line.Quantity,
			UnitPrice:     unit,
			PurchasePrice: purchase,
		})
	}
	return out, nil
}

// PaymentRequest for POST /sales/:id/payments and /credits/:id/payments.
type PaymentRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// ToMoney parses the payment amount.
func (r PaymentRequest) ToMoney() (types.Money, error) {
	amount, err := types.NewMoneyFromString(r.Amount)
	if err != nil {
		return types.Zero(), apperror.NewValidation("invalid amount").WithDetail("value", r.Amount)
	}
	return amount, nil
}

// OpenCreditRequest for POST /credits.
type OpenCreditRequest struct {
	CustomerName string `json:"customerName" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
}
