package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	// ProvisionalID lets the client stage batches against a product before
	// saving it; batches keyed to this id are adopted on creation.
	ProvisionalID *string         `json:"provisional_id" validate:"omitempty,uuid"`
	Barcode       string          `json:"barcode"        validate:"required"`
	Name          string          `json:"name"           validate:"required"`
	Price         decimal.Decimal `json:"price"          validate:"min=0"`
	// BuyPrice is optional and defaults to zero when absent.
	BuyPrice *decimal.Decimal `json:"buy_price" validate:"omitempty,min=0"`
}

type UpdateProductRequest struct {
	Barcode  string           `json:"barcode"  validate:"required"`
	Name     string           `json:"name"     validate:"required"`
	Price    decimal.Decimal  `json:"price"    validate:"min=0"`
	BuyPrice *decimal.Decimal `json:"buy_price" validate:"omitempty,min=0"`
}

type ProductFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type ProductResponse struct {
	ID         string          `json:"id"`
	Barcode    string          `json:"barcode"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	BuyPrice   decimal.Decimal `json:"buy_price"`
	Sold       int             `json:"sold"`
	CreatedAt  string          `json:"created_at"`
	LastEditAt string          `json:"last_edit_at"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ProductWithStock pairs a product with its derived available stock and the
// batches backing it, for drill-down in the inventory view.
type ProductWithStock struct {
	ProductResponse
	AvailableStock int             `json:"available_stock"`
	Batches        []BatchResponse `json:"batches"`
}

// PriceCheckResponse is the scan-adapter lookup result, cached in Redis.
type PriceCheckResponse struct {
	ID      string          `json:"id"`
	Barcode string          `json:"barcode"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
}
