package service

import (
	"context"
	"fmt"
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/apierror"
	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/model"
	"github.com/azmi-amirullah/minimarket-pos/internal/repository"
	"github.com/azmi-amirullah/minimarket-pos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var oneHundred = decimal.NewFromInt(100)

// ComputeTotals applies discount and tax to a cart subtotal.
// The discount is NOT floored at zero: a discount exceeding the subtotal
// yields a negative grand total, which ValidatePayment then rejects
// (grandTotal must be > 0). See DESIGN.md for the business-rule discussion.
func ComputeTotals(subtotal, discount, taxRatePct decimal.Decimal) dto.Totals {
	afterDiscount := subtotal.Sub(discount)
	taxAmount := afterDiscount.Mul(taxRatePct).Div(oneHundred)
	return dto.Totals{
		SubtotalAfterDiscount: afterDiscount,
		TaxAmount:             taxAmount,
		GrandTotal:            afterDiscount.Add(taxAmount),
	}
}

// ValidatePayment checks the tendered amount against the grand total.
// Valid iff amountPaid >= grandTotal AND grandTotal > 0. Change is exactly
// zero at the boundary; when invalid, Change carries the absolute shortfall.
func ValidatePayment(amountPaid, grandTotal decimal.Decimal) dto.PaymentCheck {
	diff := amountPaid.Sub(grandTotal)
	if amountPaid.GreaterThanOrEqual(grandTotal) && grandTotal.IsPositive() {
		return dto.PaymentCheck{IsValid: true, Change: diff}
	}
	return dto.PaymentCheck{IsValid: false, Change: diff.Abs()}
}

// SaleService converts a cart into an immutable sales transaction.
//
// Committing a sale appends ONE record (plus its line snapshots) — it never
// mutates batch quantities. Available stock stays derived, so there is no
// stock-decrement race to lose. On persistence failure nothing is written
// and the caller must keep its cart.
type SaleService interface {
	Checkout(ctx context.Context, userID uuid.UUID, req dto.CheckoutRequest) (*dto.SaleResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo           repository.SaleRepository
	products       repository.ProductRepository
	inventory      InventoryService
	dispatcher     *worker.Dispatcher
	cache          *DashboardCache
	defaultTaxRate decimal.Decimal
}

func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	inventory InventoryService,
	dispatcher *worker.Dispatcher,
	cache *DashboardCache,
	defaultTaxRate decimal.Decimal,
) SaleService {
	return &saleService{
		repo:           repo,
		products:       products,
		inventory:      inventory,
		dispatcher:     dispatcher,
		cache:          cache,
		defaultTaxRate: defaultTaxRate,
	}
}

// ── Checkout ─────────────────────────────────────────────────────────────────
//  1. Merge request lines into a cart (unique by product, quantities added)
//  2. Resolve each product and snapshot name/barcode/price/buyPrice
//  3. Compute totals and validate payment
//  4. Flag (not block) lines whose quantity exceeds derived available stock
//  5. Single tx: append sale + items, bump informational sold counters
//  6. After commit: invalidate dashboard cache, enqueue receipt job

func (s *saleService) Checkout(ctx context.Context, userID uuid.UUID, req dto.CheckoutRequest) (*dto.SaleResponse, error) {
	if len(req.Lines) == 0 {
		return nil, apierror.Validation("cart is empty")
	}

	cart := NewCart()
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, apierror.Validation("line quantity must be greater than zero")
		}
		pid, err := uuid.Parse(line.ProductID)
		if err != nil {
			return nil, apierror.Validation("invalid product id")
		}
		p, err := s.products.FindByID(ctx, pid)
		if err != nil {
			return nil, apierror.NotFound(fmt.Sprintf("product %s not found", line.ProductID))
		}
		cart.Add(CartLine{
			ProductID:      p.ID,
			ProductName:    p.Name,
			ProductBarcode: p.Barcode,
			Price:          p.Price,
			BuyPrice:       p.BuyPrice,
			Quantity:       line.Quantity,
		})
	}

	taxRate := s.defaultTaxRate
	if req.TaxRatePct != nil {
		taxRate = *req.TaxRatePct
	}
	totals := ComputeTotals(cart.Subtotal(), req.Discount, taxRate)

	payment := ValidatePayment(req.AmountPaid, totals.GrandTotal)
	if !payment.IsValid {
		if !totals.GrandTotal.IsPositive() {
			return nil, apierror.Validation("grand total must be positive")
		}
		return nil, apierror.Validation(fmt.Sprintf("payment short by %s", payment.Change.StringFixed(2)))
	}

	// Oversell is allowed but flagged for review, never silently accepted.
	stockConflict := false
	for _, line := range cart.Lines() {
		available, err := s.inventory.AvailableStock(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if line.Quantity > available {
			stockConflict = true
			break
		}
	}

	sale := &model.Sale{
		UserID:        userID,
		Subtotal:      cart.Subtotal(),
		Discount:      req.Discount,
		TaxRatePct:    taxRate,
		TaxAmount:     totals.TaxAmount,
		TotalAmount:   totals.GrandTotal,
		AmountPaid:    req.AmountPaid,
		Change:        payment.Change,
		StockConflict: stockConflict,
	}
	for _, line := range cart.Lines() {
		sale.Items = append(sale.Items, model.SaleItem{
			ProductID:      line.ProductID,
			ProductName:    line.ProductName,
			ProductBarcode: line.ProductBarcode,
			Price:          line.Price,
			BuyPrice:       line.BuyPrice,
			Quantity:       line.Quantity,
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, sale); err != nil {
			return err
		}
		for _, line := range cart.Lines() {
			if err := s.products.IncrementSoldTx(tx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, apierror.Persistence(txErr)
	}

	// Post-commit side effects are best-effort: the sale is already durable.
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	if s.dispatcher != nil {
		payload := worker.ReceiptJobPayload{SaleID: sale.ID.String()}
		if req.CustomerEmail != nil && *req.CustomerEmail != "" {
			payload.CustomerEmail = *req.CustomerEmail
		}
		_ = s.dispatcher.EnqueueReceipt(ctx, payload)
	}

	return saleToResponse(sale), nil
}

func (s *saleService) GetByID(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("sale not found")
	}
	return saleToResponse(sale), nil
}

func (s *saleService) List(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for _, sale := range sales {
		items = append(items, *saleToResponse(&sale))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		lines = append(lines, dto.SaleLineResponse{
			ProductID:      item.ProductID.String(),
			ProductName:    item.ProductName,
			ProductBarcode: item.ProductBarcode,
			Price:          item.Price,
			BuyPrice:       item.BuyPrice,
			Quantity:       item.Quantity,
			Subtotal:       item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		})
	}
	return &dto.SaleResponse{
		ID:            sale.ID.String(),
		Lines:         lines,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		TaxRatePct:    sale.TaxRatePct,
		TaxAmount:     sale.TaxAmount,
		TotalAmount:   sale.TotalAmount,
		AmountPaid:    sale.AmountPaid,
		Change:        sale.Change,
		StockConflict: sale.StockConflict,
		CreatedAt:     sale.CreatedAt.Format(time.RFC3339),
	}
}
