package repository

import (
	"context"

	"github.com/azmi-amirullah/minimarket-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BatchRepository is the data access contract for stock batches.
// Soft deletes are modeled with an explicit deleted_at column rather than
// gorm.DeletedAt so that pending-deleted rows stay visible for the undo flow.
type BatchRepository interface {
	Create(ctx context.Context, b *model.StockBatch) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockBatch, error)
	// ListByProduct returns non-deleted batches, oldest first.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockBatch, error)
	// ListActive returns every non-deleted batch across all products.
	ListActive(ctx context.Context) ([]model.StockBatch, error)
	Update(ctx context.Context, b *model.StockBatch) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) error

	// AdoptProductTx rewrites batches staged under a provisional product id
	// to the persisted product id, inside the product-creation transaction.
	AdoptProductTx(tx *gorm.DB, provisionalID, productID uuid.UUID) error
	// ReplaceAllTx swaps all batches inside a sync transaction.
	ReplaceAllTx(tx *gorm.DB, batches []model.StockBatch) error

	DB() *gorm.DB
}

type batchRepo struct{ db *gorm.DB }

func NewBatchRepository(db *gorm.DB) BatchRepository { return &batchRepo{db: db} }

func (r *batchRepo) DB() *gorm.DB { return r.db }

func (r *batchRepo) Create(ctx context.Context, b *model.StockBatch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *batchRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockBatch, error) {
	var b model.StockBatch
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	return &b, err
}

func (r *batchRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockBatch, error) {
	var batches []model.StockBatch
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND deleted_at IS NULL", productID).
		Order("added_at ASC").
		Find(&batches).Error
	return batches, err
}

func (r *batchRepo) ListActive(ctx context.Context) ([]model.StockBatch, error) {
	var batches []model.StockBatch
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL").
		Order("added_at ASC").
		Find(&batches).Error
	return batches, err
}

func (r *batchRepo) Update(ctx context.Context, b *model.StockBatch) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *batchRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.StockBatch{}).
		Where("id = ? AND deleted_at IS NULL", id).
		UpdateColumn("deleted_at", gorm.Expr("NOW()"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *batchRepo) Restore(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.StockBatch{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		UpdateColumn("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *batchRepo) AdoptProductTx(tx *gorm.DB, provisionalID, productID uuid.UUID) error {
	return tx.Model(&model.StockBatch{}).
		Where("product_id = ?", provisionalID).
		UpdateColumn("product_id", productID).Error
}

func (r *batchRepo) ReplaceAllTx(tx *gorm.DB, batches []model.StockBatch) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.StockBatch{}).Error; err != nil {
		return err
	}
	if len(batches) == 0 {
		return nil
	}
	return tx.Create(&batches).Error
}
