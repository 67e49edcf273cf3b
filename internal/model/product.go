package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Available stock is never stored here — it is
// derived on every read from batches minus recorded sales (see service layer).
// Sold is a cumulative informational counter only; it plays no part in the
// stock arithmetic.
type Product struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Barcode is a lookup hint for the scan adapter. Duplicates are rejected
	// at creation time rather than by a DB constraint.
	Barcode    string          `gorm:"index;not null"`
	Name       string          `gorm:"index;not null"`
	Price      decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	BuyPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Sold       int             `gorm:"not null;default:0"`
	CreatedAt  time.Time
	LastEditAt time.Time `gorm:"autoUpdateTime"`

	Batches []StockBatch `gorm:"foreignKey:ProductID"`
}
