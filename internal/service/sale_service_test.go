package service

import (
	"context"
	"testing"
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/apierror"
	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Pure payment math ────────────────────────────────────────────────────────

func TestComputeTotals(t *testing.T) {
	totals := ComputeTotals(d("100"), d("10"), d("10"))
	assert.True(t, totals.SubtotalAfterDiscount.Equal(d("90")))
	assert.True(t, totals.TaxAmount.Equal(d("9")))
	assert.True(t, totals.GrandTotal.Equal(d("99")))
}

func TestComputeTotalsZeroTax(t *testing.T) {
	totals := ComputeTotals(d("42.50"), decimal.Zero, decimal.Zero)
	assert.True(t, totals.GrandTotal.Equal(d("42.50")))
	assert.True(t, totals.TaxAmount.IsZero())
}

func TestComputeTotalsDiscountExceedsSubtotal(t *testing.T) {
	// The arithmetic is not floored: the caller decides what a negative
	// grand total means (ValidatePayment rejects it).
	totals := ComputeTotals(d("10"), d("15"), decimal.Zero)
	assert.True(t, totals.GrandTotal.Equal(d("-5")))
}

func TestValidatePayment(t *testing.T) {
	cases := []struct {
		name       string
		paid       string
		total      string
		wantValid  bool
		wantChange string
	}{
		{"exact payment", "50", "50", true, "0"},
		{"overpayment returns change", "60", "50", true, "10"},
		{"shortfall is absolute", "40", "50", false, "10"},
		{"zero total invalid even if covered", "0", "0", false, "0"},
		{"negative total invalid", "100", "-5", false, "105"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidatePayment(d(tc.paid), d(tc.total))
			assert.Equal(t, tc.wantValid, got.IsValid)
			assert.True(t, got.Change.Equal(d(tc.wantChange)), "change = %s", got.Change)
		})
	}
}

// ── Checkout ─────────────────────────────────────────────────────────────────

type saleFixture struct {
	products *stubProductRepo
	batches  *stubBatchRepo
	sales    *stubSaleRepo
	svc      SaleService
}

func newSaleFixture(t *testing.T, defaultTax string) *saleFixture {
	t.Helper()
	products := newStubProductRepo()
	batches := newStubBatchRepo()
	sales := newStubSaleRepo()
	inventory := NewInventoryService(products, batches, sales)
	svc := NewSaleService(sales, products, inventory, nil, nil, d(defaultTax))
	return &saleFixture{products: products, batches: batches, sales: sales, svc: svc}
}

func (f *saleFixture) seedProduct(name, barcode, price, buyPrice string, stock int) *model.Product {
	p := f.products.put(model.Product{
		Name:     name,
		Barcode:  barcode,
		Price:    d(price),
		BuyPrice: d(buyPrice),
	})
	if stock > 0 {
		f.batches.put(model.StockBatch{
			ProductID:  p.ID,
			Expiration: time.Now().AddDate(1, 0, 0),
			AddedAt:    time.Now(),
			Quantity:   stock,
		})
	}
	return p
}

func TestCheckoutExactPayment(t *testing.T) {
	f := newSaleFixture(t, "0")
	p := f.seedProduct("Milk 1L", "111", "3.50", "2.00", 10)

	resp, err := f.svc.Checkout(context.Background(), uuid.New(), dto.CheckoutRequest{
		Lines:      []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 2}},
		AmountPaid: d("7.00"),
	})
	require.NoError(t, err)

	assert.True(t, resp.TotalAmount.Equal(d("7.00")))
	assert.True(t, resp.Change.IsZero())
	assert.False(t, resp.StockConflict)
	require.Len(t, f.sales.sales, 1)

	// Line snapshot is denormalized from the product at sale time.
	item := f.sales.sales[0].Items[0]
	assert.Equal(t, "Milk 1L", item.ProductName)
	assert.Equal(t, "111", item.ProductBarcode)
	assert.True(t, item.BuyPrice.Equal(d("2.00")))

	// Informational sold counter bumped; batch quantities untouched.
	assert.Equal(t, 2, f.products.products[p.ID].Sold)
	for _, b := range f.batches.batches {
		assert.Equal(t, 10, b.Quantity)
	}
}

func TestCheckoutAppliesDiscountAndDefaultTax(t *testing.T) {
	f := newSaleFixture(t, "10")
	p := f.seedProduct("Rice 5kg", "222", "100", "60", 50)

	resp, err := f.svc.Checkout(context.Background(), uuid.New(), dto.CheckoutRequest{
		Lines:      []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 1}},
		Discount:   d("10"),
		AmountPaid: d("100"),
	})
	require.NoError(t, err)

	// (100 - 10) + 10% tax = 99
	assert.True(t, resp.TaxRatePct.Equal(d("10")))
	assert.True(t, resp.TotalAmount.Equal(d("99")))
	assert.True(t, resp.Change.Equal(d("1")))
}

func TestCheckoutExplicitTaxRateOverridesDefault(t *testing.T) {
	f := newSaleFixture(t, "10")
	p := f.seedProduct("Eggs", "333", "50", "30", 20)

	zero := decimal.Zero
	resp, err := f.svc.Checkout(context.Background(), uuid.New(), dto.CheckoutRequest{
		Lines:      []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 1}},
		TaxRatePct: &zero,
		AmountPaid: d("50"),
	})
	require.NoError(t, err)
	assert.True(t, resp.TaxAmount.IsZero())
	assert.True(t, resp.TotalAmount.Equal(d("50")))
}

func TestCheckoutMergesRepeatedLines(t *testing.T) {
	f := newSaleFixture(t, "0")
	p := f.seedProduct("Soap", "444", "2", "1", 10)

	resp, err := f.svc.Checkout(context.Background(), uuid.New(), dto.CheckoutRequest{
		Lines: []dto.SaleLineRequest{
			{ProductID: p.ID.String(), Quantity: 1},
			{ProductID: p.ID.String(), Quantity: 2},
		},
		AmountPaid: d("6"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 3, resp.Lines[0].Quantity)
	assert.True(t, resp.Subtotal.Equal(d("6")))
}

func TestCheckoutOversellIsFlaggedNotBlocked(t *testing.T) {
	f := newSaleFixture(t, "0")
	p := f.seedProduct("Chips", "555", "1", "0.50", 3)

	resp, err := f.svc.Checkout(context.Background(), uuid.New(), dto.CheckoutRequest{
		Lines:      []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 5}},
		AmountPaid: d("5"),
	})
	require.NoError(t, err)
	assert.True(t, resp.StockConflict)
	require.Len(t, f.sales.sales, 1)
	assert.True(t, f.sales.sales[0].StockConflict)
}

func TestCheckoutShortPaymentRejected(t *testing.T) {
	f := newSaleFixture(t, "0")
	p := f.seedProduct("Bread", "666", "4", "2", 10)

	_, err := f.svc.Checkout(context.Background(), uuid.New(), dto.CheckoutRequest{
		Lines:      []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 2}},
		AmountPaid: d("5"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short by 3.00")
	assert.Empty(t, f.sales.sales, "nothing may be persisted on a rejected payment")
}

func TestCheckoutNonPositiveTotalRejected(t *testing.T) {
	f := newSaleFixture(t, "0")
	p := f.seedProduct("Gum", "777", "1", "0.50", 10)

	_, err := f.svc.Checkout(context.Background(), uuid.New(), dto.CheckoutRequest{
		Lines:      []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 1}},
		Discount:   d("5"),
		AmountPaid: d("100"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grand total must be positive")
	assert.Empty(t, f.sales.sales)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newSaleFixture(t, "0")
	_, err := f.svc.Checkout(context.Background(), uuid.New(), dto.CheckoutRequest{AmountPaid: d("10")})
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, err.(*apierror.Error).Kind)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	f := newSaleFixture(t, "0")
	_, err := f.svc.Checkout(context.Background(), uuid.New(), dto.CheckoutRequest{
		Lines:      []dto.SaleLineRequest{{ProductID: uuid.NewString(), Quantity: 1}},
		AmountPaid: d("10"),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, err.(*apierror.Error).Kind)
}

func TestCheckoutPersistenceFailureWritesNothing(t *testing.T) {
	f := newSaleFixture(t, "0")
	p := f.seedProduct("Oil", "888", "9", "5", 10)
	f.sales.failCreate = true

	_, err := f.svc.Checkout(context.Background(), uuid.New(), dto.CheckoutRequest{
		Lines:      []dto.SaleLineRequest{{ProductID: p.ID.String(), Quantity: 1}},
		AmountPaid: d("9"),
	})
	require.Error(t, err)
	assert.Equal(t, apierror.KindPersistence, err.(*apierror.Error).Kind)
	assert.Empty(t, f.sales.sales)
	assert.Equal(t, 0, f.products.products[p.ID].Sold)
}

func TestGetByIDNotFound(t *testing.T) {
	f := newSaleFixture(t, "0")
	_, err := f.svc.GetByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, err.(*apierror.Error).Kind)
}

func TestListSalesPaginationDefaults(t *testing.T) {
	f := newSaleFixture(t, "0")
	f.sales.add(model.Sale{CreatedAt: time.Now()})

	resp, err := f.svc.List(context.Background(), dto.SaleFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 50, resp.Limit)
	assert.Equal(t, int64(1), resp.Total)
}
