package sales

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/types"
)

func TestSale_DerivePaymentStatus(t *testing.T) {
	tests := []struct {
		name  string
		final string
		paid  string
		want  PaymentStatus
	}{
		{"fully paid", "100.00", "100.00", PaymentPaid},
		{"overpaid counts as paid", "100.00", "120.00", PaymentPaid},
		{"partial", "100.00", "40.00", PaymentPartial},
		{"unpaid", "100.00", "0", PaymentUnpaid},
		{"zero total zero paid is paid", "0", "0", PaymentPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSale(id.New())
			s.FinalAmount = types.MustMoney(tt.final)
			s.PaidAmount = types.MustMoney(tt.paid)
			s.DerivePaymentStatus()
			assert.Equal(t, tt.want, s.PaymentStatus)
		})
	}
}

func TestSale_OutstandingClampsAtZero(t *testing.T) {
	s := NewSale(id.New())
	s.FinalAmount = types.MustMoney("100.00")
	s.PaidAmount = types.MustMoney("120.00")

	assert.True(t, s.Outstanding().IsZero())

	s.PaidAmount = types.MustMoney("30.00")
	assert.True(t, s.Outstanding().Equal(types.MustMoney("70.00")))
}

func TestSale_IsCustomerCredit(t *testing.T) {
	name := "Alice"
	empty := ""

	s := NewSale(id.New())
	s.PaymentStatus = PaymentUnpaid
	assert.False(t, s.IsCustomerCredit(), "anonymous sale is never credit")

	s.CustomerName = &empty
	assert.False(t, s.IsCustomerCredit())

	s.CustomerName = &name
	assert.True(t, s.IsCustomerCredit())

	s.PaymentStatus = PaymentPaid
	assert.False(t, s.IsCustomerCredit(), "settled sale carries no exposure")
}

func TestNewSaleItem_ProfitPrecomputed(t *testing.T) {
	item := NewSaleItem(id.New(), "Widget", 3,
		types.MustMoney("10.50"), types.MustMoney("7.00"))

	assert.True(t, item.Profit.Equal(types.MustMoney("10.50")), "got %s", item.Profit)
	assert.True(t, item.CountsTowardTotals())

	item.IsReturn = true
	assert.False(t, item.CountsTowardTotals())
}

func TestSaleItem_Validate(t *testing.T) {
	ctx := context.Background()

	item := NewSaleItem(id.New(), "Widget", 1, types.Zero(), types.Zero())
	assert.NoError(t, item.Validate(ctx))

	noName := NewSaleItem(id.New(), "", 1, types.Zero(), types.Zero())
	assert.Error(t, noName.Validate(ctx))

	zeroQty := NewSaleItem(id.New(), "Widget", 0, types.Zero(), types.Zero())
	assert.Error(t, zeroQty.Validate(ctx))
}

func TestCredit_ApplyPayment(t *testing.T) {
	credit := NewCashCredit(id.New(), "Bob", types.MustMoney("100.00"))

	require.NoError(t, credit.ApplyPayment(types.MustMoney("40.00")))
	assert.True(t, credit.RemainingAmount.Equal(types.MustMoney("60.00")))
	assert.True(t, credit.OriginalAmount.Equal(types.MustMoney("100.00")))
	assert.Equal(t, 2, credit.Version)

	// Settling exactly the remainder is allowed.
	require.NoError(t, credit.ApplyPayment(types.MustMoney("60.00")))
	assert.True(t, credit.RemainingAmount.IsZero())
}

func TestCredit_ApplyPayment_Overpayment(t *testing.T) {
	credit := NewCashCredit(id.New(), "Bob", types.MustMoney("50.00"))

	err := credit.ApplyPayment(types.MustMoney("50.01"))
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeCreditOverpayment, appErr.Code)

	// Balance untouched on rejection.
	assert.True(t, credit.RemainingAmount.Equal(types.MustMoney("50.00")))
}

func TestCredit_ApplyPayment_RejectsNonPositive(t *testing.T) {
	credit := NewCashCredit(id.New(), "Bob", types.MustMoney("50.00"))

	assert.Error(t, credit.ApplyPayment(types.Zero()))
	assert.Error(t, credit.ApplyPayment(types.MustMoney("-1")))
}
