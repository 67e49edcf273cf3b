package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type SaleLineRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type CheckoutRequest struct {
	// Lines may repeat a product; repeated lines are merged cart-style
	// (quantities added) before processing.
	Lines      []SaleLineRequest `json:"lines"       validate:"required,min=1,dive"`
	Discount   decimal.Decimal   `json:"discount"    validate:"min=0"`
	TaxRatePct *decimal.Decimal  `json:"tax_rate_pct" validate:"omitempty,min=0"`
	AmountPaid decimal.Decimal   `json:"amount_paid" validate:"required"`
	// CustomerEmail: optional — when present, the receipt worker mails the PDF.
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
}

type SaleFilter struct {
	Date  string `form:"date"` // YYYY-MM-DD; empty = today
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type SaleLineResponse struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductBarcode string          `json:"product_barcode"`
	Price          decimal.Decimal `json:"price"`
	BuyPrice       decimal.Decimal `json:"buy_price"`
	Quantity       int             `json:"quantity"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	Lines         []SaleLineResponse `json:"lines"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	TaxRatePct    decimal.Decimal    `json:"tax_rate_pct"`
	TaxAmount     decimal.Decimal    `json:"tax_amount"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	AmountPaid    decimal.Decimal    `json:"amount_paid"`
	Change        decimal.Decimal    `json:"change"`
	StockConflict bool               `json:"stock_conflict"`
	CreatedAt     string             `json:"created_at"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// Totals is the payment math breakdown returned by the totals preview
// endpoint and embedded in checkout processing.
type Totals struct {
	SubtotalAfterDiscount decimal.Decimal `json:"subtotal_after_discount"`
	TaxAmount             decimal.Decimal `json:"tax_amount"`
	GrandTotal            decimal.Decimal `json:"grand_total"`
}

// PaymentCheck reports payment validity. When invalid, Change carries the
// absolute shortfall instead of change due.
type PaymentCheck struct {
	IsValid bool            `json:"is_valid"`
	Change  decimal.Decimal `json:"change"`
}
