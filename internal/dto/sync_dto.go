package dto

import "github.com/shopspring/decimal"

// Remote snapshot shapes returned by the canonical backend. Field names match
// the remote API's JSON; the sync service maps them onto local models.

type RemoteProduct struct {
	ID       string          `json:"id"`
	Barcode  string          `json:"barcode"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	BuyPrice decimal.Decimal `json:"buy_price"`
	Sold     int             `json:"sold"`
}

type RemoteBatch struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Expiration string `json:"expiration"` // YYYY-MM-DD
	AddedAt    string `json:"added_at"`   // RFC 3339
	Quantity   int    `json:"quantity"`
	SoldOut    bool   `json:"sold_out"`
}

type RemoteSaleLine struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name"`
	ProductBarcode string          `json:"product_barcode"`
	Price          decimal.Decimal `json:"price"`
	BuyPrice       decimal.Decimal `json:"buy_price"`
	Quantity       int             `json:"quantity"`
}

type RemoteSale struct {
	ID          string           `json:"id"`
	Timestamp   string           `json:"timestamp"` // RFC 3339
	Lines       []RemoteSaleLine `json:"products"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	AmountPaid  decimal.Decimal  `json:"amount_paid"`
	Change      decimal.Decimal  `json:"change"`
}

// RemoteSnapshot is the full canonical state pulled in one sync cycle.
// The swap into the local store is all-or-nothing.
type RemoteSnapshot struct {
	Products []RemoteProduct `json:"products"`
	Batches  []RemoteBatch   `json:"stock_batches"`
	Sales    []RemoteSale    `json:"sales"`
}

// SyncResult summarizes one completed sync cycle.
type SyncResult struct {
	PulledProducts int    `json:"pulled_products"`
	PulledBatches  int    `json:"pulled_batches"`
	PulledSales    int    `json:"pulled_sales"`
	PushedSales    int    `json:"pushed_sales"`
	CompletedAt    string `json:"completed_at"`
}
