package repository

import (
	"context"
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleRepository is the access contract for the append-only sales ledger.
// There are deliberately no update or delete methods for committed sales.
type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error)
	// ListSince returns sales with items whose timestamp is >= from (or all
	// when from is zero), ascending by creation time. Feeds the aggregator.
	ListSince(ctx context.Context, from time.Time) ([]model.Sale, error)
	// SoldQuantities returns total units sold per product across the whole
	// ledger. Feeds the derived-stock computation.
	SoldQuantities(ctx context.Context) (map[uuid.UUID]int, error)
	SoldQuantityByProduct(ctx context.Context, productID uuid.UUID) (int, error)

	// ListUnsynced / MarkSynced support the push half of the sync adapter.
	ListUnsynced(ctx context.Context, limit int) ([]model.Sale, error)
	MarkSynced(ctx context.Context, ids []uuid.UUID, at time.Time) error
	// ReplaceAllTx swaps the ledger with the remote snapshot inside a sync tx.
	ReplaceAllTx(tx *gorm.DB, sales []model.Sale) error

	DB() *gorm.DB
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) Create(ctx context.Context, tx *gorm.DB, s *model.Sale) error {
	return tx.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	err := r.db.WithContext(ctx).Preload("Items").First(&s, "id = ?", id).Error
	return &s, err
}

func (r *saleRepo) List(ctx context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	} else {
		// Default: today
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) ListSince(ctx context.Context, from time.Time) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.WithContext(ctx).Preload("Items").Order("created_at ASC")
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	err := q.Find(&sales).Error
	return sales, err
}

func (r *saleRepo) SoldQuantities(ctx context.Context) (map[uuid.UUID]int, error) {
	type row struct {
		ProductID uuid.UUID
		Total     int
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.SaleItem{}).
		Select("product_id, SUM(quantity) AS total").
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sold := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		sold[r.ProductID] = r.Total
	}
	return sold, nil
}

func (r *saleRepo) SoldQuantityByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.SaleItem{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error
	return int(total), err
}

func (r *saleRepo) ListUnsynced(ctx context.Context, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	q := r.db.WithContext(ctx).Preload("Items").
		Where("synced_at IS NULL").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&sales).Error
	return sales, err
}

func (r *saleRepo) MarkSynced(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Sale{}).
		Where("id IN ?", ids).
		UpdateColumn("synced_at", at).Error
}

func (r *saleRepo) ReplaceAllTx(tx *gorm.DB, sales []model.Sale) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.SaleItem{}).Error; err != nil {
		return err
	}
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Sale{}).Error; err != nil {
		return err
	}
	if len(sales) == 0 {
		return nil
	}
	return tx.Create(&sales).Error
}
