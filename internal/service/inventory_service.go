package service

import (
	"context"
	"errors"
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/apierror"
	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/model"
	"github.com/azmi-amirullah/minimarket-pos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// InventoryService is the authoritative view of how many sellable units of
// each product exist right now, plus the batch mutations that keep the
// underlying data consistent.
//
// Available stock is DERIVED on every read:
//
//	available = Σ(quantity of non-deleted, non-sold-out batches)
//	          − Σ(quantity across all sale line items for the product)
//
// No running counter is stored, so a committed sale can never race a stock
// decrement — at the cost of O(ledger) recomputation per read.
type InventoryService interface {
	ListProductsWithStock(ctx context.Context) ([]dto.ProductWithStock, error)
	AvailableStock(ctx context.Context, productID uuid.UUID) (int, error)
	AddBatch(ctx context.Context, req dto.AddBatchRequest) (*dto.BatchResponse, error)
	UpdateBatch(ctx context.Context, id uuid.UUID, req dto.UpdateBatchRequest) (*dto.BatchResponse, error)
	ToggleSoldOut(ctx context.Context, id uuid.UUID) (*dto.BatchResponse, error)
	DeleteBatch(ctx context.Context, id uuid.UUID) error
	RestoreBatch(ctx context.Context, id uuid.UUID) error
}

type inventoryService struct {
	products repository.ProductRepository
	batches  repository.BatchRepository
	sales    repository.SaleRepository
}

func NewInventoryService(
	products repository.ProductRepository,
	batches repository.BatchRepository,
	sales repository.SaleRepository,
) InventoryService {
	return &inventoryService{products: products, batches: batches, sales: sales}
}

// ── Derived stock ────────────────────────────────────────────────────────────

func (s *inventoryService) ListProductsWithStock(ctx context.Context) ([]dto.ProductWithStock, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	batches, err := s.batches.ListActive(ctx)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	sold, err := s.sales.SoldQuantities(ctx)
	if err != nil {
		return nil, apierror.Persistence(err)
	}

	byProduct := make(map[uuid.UUID][]model.StockBatch, len(products))
	for _, b := range batches {
		byProduct[b.ProductID] = append(byProduct[b.ProductID], b)
	}

	out := make([]dto.ProductWithStock, 0, len(products))
	for _, p := range products {
		available := 0
		batchDTOs := make([]dto.BatchResponse, 0, len(byProduct[p.ID]))
		for _, b := range byProduct[p.ID] {
			if !b.SoldOut {
				available += b.Quantity
			}
			batchDTOs = append(batchDTOs, batchToResponse(&b))
		}
		available -= sold[p.ID]
		out = append(out, dto.ProductWithStock{
			ProductResponse: productToResponse(&p),
			AvailableStock:  available,
			Batches:         batchDTOs,
		})
	}
	return out, nil
}

func (s *inventoryService) AvailableStock(ctx context.Context, productID uuid.UUID) (int, error) {
	batches, err := s.batches.ListByProduct(ctx, productID)
	if err != nil {
		return 0, apierror.Persistence(err)
	}
	sold, err := s.sales.SoldQuantityByProduct(ctx, productID)
	if err != nil {
		return 0, apierror.Persistence(err)
	}
	available := 0
	for _, b := range batches {
		if !b.SoldOut {
			available += b.Quantity
		}
	}
	return available - sold, nil
}

// ── Batch lifecycle ──────────────────────────────────────────────────────────

func (s *inventoryService) AddBatch(ctx context.Context, req dto.AddBatchRequest) (*dto.BatchResponse, error) {
	if req.Quantity <= 0 {
		return nil, apierror.Validation("batch quantity must be greater than zero")
	}
	expiration, err := time.Parse(dateLayout, req.Expiration)
	if err != nil {
		return nil, apierror.Validation("expiration must be a YYYY-MM-DD date")
	}
	// Product existence is deliberately NOT checked: the new-product workflow
	// stages batches against a provisional id before the product is saved.
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.Validation("invalid product id")
	}

	addedAt := time.Now()
	if req.AddedAt != nil {
		addedAt, err = time.Parse(time.RFC3339, *req.AddedAt)
		if err != nil {
			return nil, apierror.Validation("added_at must be an RFC 3339 timestamp")
		}
	}

	batch := &model.StockBatch{
		ProductID:  productID,
		Expiration: expiration,
		AddedAt:    addedAt,
		Quantity:   req.Quantity,
		SoldOut:    false,
	}
	if err := s.batches.Create(ctx, batch); err != nil {
		return nil, apierror.Persistence(err)
	}
	resp := batchToResponse(batch)
	return &resp, nil
}

func (s *inventoryService) UpdateBatch(ctx context.Context, id uuid.UUID, req dto.UpdateBatchRequest) (*dto.BatchResponse, error) {
	if req.Quantity < 0 {
		return nil, apierror.Validation("batch quantity cannot be negative")
	}
	expiration, err := time.Parse(dateLayout, req.Expiration)
	if err != nil {
		return nil, apierror.Validation("expiration must be a YYYY-MM-DD date")
	}

	batch, err := s.batches.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("batch not found")
		}
		return nil, apierror.Persistence(err)
	}

	// Quantity 0 means "fully consumed" without removing the row.
	// SoldOut is never changed here — it has its own toggle.
	batch.Expiration = expiration
	batch.Quantity = req.Quantity
	if err := s.batches.Update(ctx, batch); err != nil {
		return nil, apierror.Persistence(err)
	}
	resp := batchToResponse(batch)
	return &resp, nil
}

func (s *inventoryService) ToggleSoldOut(ctx context.Context, id uuid.UUID) (*dto.BatchResponse, error) {
	batch, err := s.batches.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("batch not found")
		}
		return nil, apierror.Persistence(err)
	}

	// Pure availability override: no quantity side effect.
	batch.SoldOut = !batch.SoldOut
	if err := s.batches.Update(ctx, batch); err != nil {
		return nil, apierror.Persistence(err)
	}
	resp := batchToResponse(batch)
	return &resp, nil
}

func (s *inventoryService) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	if err := s.batches.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("batch not found")
		}
		return apierror.Persistence(err)
	}
	return nil
}

func (s *inventoryService) RestoreBatch(ctx context.Context, id uuid.UUID) error {
	if err := s.batches.Restore(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("batch is not pending deletion")
		}
		return apierror.Persistence(err)
	}
	return nil
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func batchToResponse(b *model.StockBatch) dto.BatchResponse {
	return dto.BatchResponse{
		ID:         b.ID.String(),
		ProductID:  b.ProductID.String(),
		Expiration: b.Expiration.Format(dateLayout),
		AddedAt:    b.AddedAt.Format(time.RFC3339),
		Quantity:   b.Quantity,
		SoldOut:    b.SoldOut,
		Deleted:    b.DeletedAt != nil,
	}
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:         p.ID.String(),
		Barcode:    p.Barcode,
		Name:       p.Name,
		Price:      p.Price,
		BuyPrice:   p.BuyPrice,
		Sold:       p.Sold,
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		LastEditAt: p.LastEditAt.Format(time.RFC3339),
	}
}
