package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopdesk/internal/core/apperror"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/types"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memSaleRepo struct {
	sales map[id.ID]*Sale
}

func newMemSaleRepo() *memSaleRepo {
	return &memSaleRepo{sales: make(map[id.ID]*Sale)}
}

func (r *memSaleRepo) Create(ctx context.Context, sale *Sale) error {
	cp := *sale
	cp.Items = append([]SaleItem(nil), sale.Items...)
	r.sales[sale.ID] = &cp
	return nil
}

func (r *memSaleRepo) GetByID(ctx context.Context, ownerID, saleID id.ID) (*Sale, error) {
	s, ok := r.sales[saleID]
	if !ok || s.OwnerID != ownerID {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	cp := *s
	cp.Items = append([]SaleItem(nil), s.Items...)
	return &cp, nil
}

func (r *memSaleRepo) Update(ctx context.Context, sale *Sale) error {
	stored, ok := r.sales[sale.ID]
	if !ok {
		return apperror.NewNotFound("sale", sale.ID.String())
	}
	items := stored.Items
	cp := *sale
	cp.Items = items
	r.sales[sale.ID] = &cp
	return nil
}

func (r *memSaleRepo) UpdateItem(ctx context.Context, item *SaleItem) error {
	s, ok := r.sales[item.SaleID]
	if !ok {
		return apperror.NewNotFound("sale", item.SaleID.String())
	}
	for i := range s.Items {
		if s.Items[i].ID == item.ID {
			s.Items[i] = *item
			return nil
		}
	}
	return apperror.NewNotFound("sale item", item.ID.String())
}

func (r *memSaleRepo) SoftDelete(ctx context.Context, ownerID, saleID id.ID, at time.Time) error {
	s, ok := r.sales[saleID]
	if !ok || s.OwnerID != ownerID {
		return apperror.NewNotFound("sale", saleID.String())
	}
	s.DeletedAt = &at
	return nil
}

func (r *memSaleRepo) List(ctx context.Context, ownerID id.ID, filter ListFilter) ([]Sale, error) {
	var out []Sale
	for _, s := range r.sales {
		if s.OwnerID != ownerID {
			continue
		}
		if s.IsDeleted() && !filter.IncludeDeleted {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

type memCreditRepo struct {
	credits map[id.ID]*Credit
}

func newMemCreditRepo() *memCreditRepo {
	return &memCreditRepo{credits: make(map[id.ID]*Credit)}
}

func (r *memCreditRepo) Create(ctx context.Context, credit *Credit) error {
	cp := *credit
	r.credits[credit.ID] = &cp
	return nil
}

func (r *memCreditRepo) GetByID(ctx context.Context, ownerID, creditID id.ID) (*Credit, error) {
	c, ok := r.credits[creditID]
	if !ok || c.OwnerID != ownerID {
		return nil, apperror.NewNotFound("credit", creditID.String())
	}
	cp := *c
	return &cp, nil
}

func (r *memCreditRepo) Update(ctx context.Context, credit *Credit) error {
	cp := *credit
	r.credits[credit.ID] = &cp
	return nil
}

func (r *memCreditRepo) ListByOwner(ctx context.Context, ownerID id.ID, creditType CreditType) ([]Credit, error) {
	var out []Credit
	for _, c := range r.credits {
		if c.OwnerID != ownerID {
			continue
		}
		if creditType != "" && c.CreditType != creditType {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func newTestService() *Service {
	return NewService(newMemSaleRepo(), newMemCreditRepo(), passthroughTx{})
}

func TestService_Checkout(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	ownerID := id.New()

	sale, err := svc.Checkout(ctx, ownerID, CheckoutRequest{
		PaidAmount: types.MustMoney("20.00"),
		Lines: []CheckoutLine{
			{ProductName: "Widget", Quantity: 2, UnitPrice: types.MustMoney("10.00"), PurchasePrice: types.MustMoney("6.00")},
			{ProductName: "Gadget", Quantity: 1, UnitPrice: types.MustMoney("15.00"), PurchasePrice: types.MustMoney("9.00")},
		},
	})
	require.NoError(t, err)

	assert.True(t, sale.FinalAmount.Equal(types.MustMoney("35.00")))
	assert.Equal(t, PaymentPartial, sale.PaymentStatus)
	require.Len(t, sale.Items, 2)
	assert.True(t, sale.Items[0].Profit.Equal(types.MustMoney("8.00")))

	loaded, err := svc.GetSale(ctx, ownerID, sale.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 2)
}

func TestService_Checkout_RequiresLines(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Checkout(ctx, id.New(), CheckoutRequest{})
	require.Error(t, err)
}

func TestService_RecordPayment(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	ownerID := id.New()

	sale, err := svc.Checkout(ctx, ownerID, CheckoutRequest{
		Lines: []CheckoutLine{
			{ProductName: "Widget", Quantity: 1, UnitPrice: types.MustMoney("100.00")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, PaymentUnpaid, sale.PaymentStatus)

	sale, err = svc.RecordPayment(ctx, ownerID, sale.ID, types.MustMoney("40.00"))
	require.NoError(t, err)
	assert.Equal(t, PaymentPartial, sale.PaymentStatus)

	sale, err = svc.RecordPayment(ctx, ownerID, sale.ID, types.MustMoney("60.00"))
	require.NoError(t, err)
	assert.Equal(t, PaymentPaid, sale.PaymentStatus)
	assert.True(t, sale.Outstanding().IsZero())

	_, err = svc.RecordPayment(ctx, ownerID, sale.ID, types.Zero())
	assert.Error(t, err)
}

func TestService_ReturnLine(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	ownerID := id.New()

	sale, err := svc.Checkout(ctx, ownerID, CheckoutRequest{
		PaidAmount: types.MustMoney("35.00"),
		Lines: []CheckoutLine{
			{ProductName: "Widget", Quantity: 2, UnitPrice: types.MustMoney("10.00")},
			{ProductName: "Gadget", Quantity: 1, UnitPrice: types.MustMoney("15.00")},
		},
	})
	require.NoError(t, err)
	itemID := sale.Items[0].ID

	sale, err = svc.ReturnLine(ctx, ownerID, sale.ID, itemID)
	require.NoError(t, err)

	// 2 x 10.00 returned: total drops, item flagged but kept.
	assert.True(t, sale.FinalAmount.Equal(types.MustMoney("15.00")))
	require.Len(t, sale.Items, 2)
	assert.True(t, sale.Items[0].IsReturn)
	assert.Equal(t, PaymentPaid, sale.PaymentStatus)

	// Returning the same line again is a no-op.
	again, err := svc.ReturnLine(ctx, ownerID, sale.ID, itemID)
	require.NoError(t, err)
	assert.True(t, again.FinalAmount.Equal(types.MustMoney("15.00")))

	_, err = svc.ReturnLine(ctx, ownerID, sale.ID, id.New())
	assert.Error(t, err)
}

func TestService_DeleteSale(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	ownerID := id.New()

	sale, err := svc.Checkout(ctx, ownerID, CheckoutRequest{
		Lines: []CheckoutLine{
			{ProductName: "Widget", Quantity: 1, UnitPrice: types.MustMoney("10.00")},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(ctx, ownerID, sale.ID))

	err = svc.DeleteSale(ctx, ownerID, sale.ID)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeSaleAlreadyDeleted, appErr.Code)

	_, err = svc.RecordPayment(ctx, ownerID, sale.ID, types.MustMoney("5.00"))
	assert.Error(t, err, "deleted sale takes no payments")
}

func TestService_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	ownerA := id.New()
	ownerB := id.New()

	sale, err := svc.Checkout(ctx, ownerA, CheckoutRequest{
		Lines: []CheckoutLine{
			{ProductName: "Widget", Quantity: 1, UnitPrice: types.MustMoney("10.00")},
		},
	})
	require.NoError(t, err)

	_, err = svc.GetSale(ctx, ownerB, sale.ID)
	assert.Error(t, err, "sale invisible to another owner")
}

func TestService_CashCredits(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	ownerID := id.New()

	credit, err := svc.OpenCashCredit(ctx, ownerID, "Alice", types.MustMoney("200.00"))
	require.NoError(t, err)

	credit, err = svc.ReceiveCreditPayment(ctx, ownerID, credit.ID, types.MustMoney("50.00"))
	require.NoError(t, err)
	assert.True(t, credit.RemainingAmount.Equal(types.MustMoney("150.00")))

	_, err = svc.ReceiveCreditPayment(ctx, ownerID, credit.ID, types.MustMoney("500.00"))
	require.Error(t, err)

	credits, err := svc.ListCredits(ctx, ownerID, CreditCash)
	require.NoError(t, err)
	require.Len(t, credits, 1)
	assert.True(t, credits[0].RemainingAmount.Equal(types.MustMoney("150.00")))

	_, err = svc.OpenCashCredit(ctx, ownerID, "", types.MustMoney("10.00"))
	assert.Error(t, err, "credit requires a customer name")
}
