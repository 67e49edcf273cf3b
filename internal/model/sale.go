package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is one committed checkout. Sales are immutable historical facts:
// they are NEVER updated or deleted, and each line carries a denormalized
// snapshot of the product at the time of sale so that later product edits
// or deletes cannot rewrite history.
type Sale struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`

	Subtotal   decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Discount   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	TaxRatePct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	// TotalAmount = (Subtotal - Discount) + TaxAmount. Analytics never reads
	// this field — revenue is always recomputed from line items.
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	AmountPaid  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Change      decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	// StockConflict flags a sale whose requested quantity exceeded the
	// derived available stock at commit time. The sale is still accepted;
	// the flag marks it for supervisor review.
	StockConflict bool `gorm:"not null;default:false"`

	// SyncedAt is set once the sale has been pushed to the remote backend.
	SyncedAt  *time.Time
	CreatedAt time.Time `gorm:"index"`

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem is one line of a sale with the product snapshot captured at
// checkout. ProductID is kept for aggregation but is not a foreign key —
// the product may be hard-deleted later without touching history.
type SaleItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName    string          `gorm:"not null"`
	ProductBarcode string          `gorm:"not null"`
	Price          decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	BuyPrice       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Quantity       int             `gorm:"not null"`
}
