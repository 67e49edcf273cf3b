package model

import (
	"time"

	"github.com/google/uuid"
)

// StockBatch is a received lot of a product with its own expiration date.
// A batch contributes `SoldOut ? 0 : Quantity` units to available stock;
// historical sales are subtracted separately at read time. The two deduction
// mechanisms are independent.
//
// Batches may be created against a product id that does not exist yet
// (new-product workflow stages batches first); saving the product with that
// id adopts them. Deletes are soft so the UI can offer an undo.
type StockBatch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_batches_product_added,priority:1"`
	// Expiration is a calendar date; time-of-day is ignored.
	Expiration time.Time `gorm:"type:date;not null"`
	// AddedAt doubles as a display-level identity key, unique per product.
	AddedAt  time.Time `gorm:"not null;uniqueIndex:idx_batches_product_added,priority:2"`
	Quantity int       `gorm:"not null"` // >0 on creation, 0 allowed on edit
	// SoldOut is a manual availability override, independent from quantity.
	SoldOut   bool       `gorm:"not null;default:false"`
	DeletedAt *time.Time `gorm:"index"` // pending-delete marker; restore clears it
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the batch contributes to available stock.
func (b *StockBatch) Active() bool {
	return b.DeletedAt == nil && !b.SoldOut
}

// TableName keeps the composite unique index scoped per product.
func (StockBatch) TableName() string { return "stock_batches" }
