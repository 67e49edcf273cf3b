package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/apierror"
	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/model"
	"github.com/azmi-amirullah/minimarket-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	priceCachePrefix = "price:"
	priceCacheTTL    = 5 * time.Minute
)

// ProductService owns the product catalog. Deleting a product does not
// cascade to batches or sales: history is denormalized and orphaned batches
// are harmless because nothing joins through a product after deletion.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// PriceByBarcode serves the scan adapter: barcode in, price out. Cached.
	PriceByBarcode(ctx context.Context, barcode string) (*dto.PriceCheckResponse, error)
}

type productService struct {
	repo    repository.ProductRepository
	batches repository.BatchRepository
	rdb     *redis.Client
}

func NewProductService(repo repository.ProductRepository, batches repository.BatchRepository, rdb *redis.Client) ProductService {
	return &productService{repo: repo, batches: batches, rdb: rdb}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	exists, err := s.repo.BarcodeExists(ctx, req.Barcode, nil)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	if exists {
		return nil, apierror.Validation("a product with this barcode already exists")
	}

	buyPrice := decimal.Zero
	if req.BuyPrice != nil {
		buyPrice = *req.BuyPrice
	}
	product := &model.Product{
		Barcode:  req.Barcode,
		Name:     req.Name,
		Price:    req.Price,
		BuyPrice: buyPrice,
	}

	// When batches were staged against a provisional id, adopt them in the
	// same transaction that persists the product.
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, product); err != nil {
			return err
		}
		if req.ProvisionalID != nil {
			provisional, err := uuid.Parse(*req.ProvisionalID)
			if err != nil {
				return err
			}
			return s.batches.AdoptProductTx(tx, provisional, product.ID)
		}
		return nil
	})
	if err != nil {
		return nil, apierror.Persistence(err)
	}

	resp := productToResponse(product)
	return &resp, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product not found")
		}
		return nil, apierror.Persistence(err)
	}
	resp := productToResponse(product)
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, productToResponse(&p))
	}
	return &dto.ProductListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product not found")
		}
		return nil, apierror.Persistence(err)
	}

	exists, err := s.repo.BarcodeExists(ctx, req.Barcode, &id)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	if exists {
		return nil, apierror.Validation("a product with this barcode already exists")
	}

	oldBarcode := product.Barcode
	product.Barcode = req.Barcode
	product.Name = req.Name
	product.Price = req.Price
	if req.BuyPrice != nil {
		product.BuyPrice = *req.BuyPrice
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, apierror.Persistence(err)
	}

	s.invalidatePriceCache(ctx, oldBarcode, product.Barcode)
	resp := productToResponse(product)
	return &resp, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("product not found")
		}
		return apierror.Persistence(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apierror.Persistence(err)
	}
	s.invalidatePriceCache(ctx, product.Barcode)
	return nil
}

func (s *productService) PriceByBarcode(ctx context.Context, barcode string) (*dto.PriceCheckResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, priceCachePrefix+barcode).Result(); err == nil {
			var resp dto.PriceCheckResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("no product with this barcode")
		}
		return nil, apierror.Persistence(err)
	}

	resp := &dto.PriceCheckResponse{
		ID:      product.ID.String(),
		Barcode: product.Barcode,
		Name:    product.Name,
		Price:   product.Price,
	}
	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, priceCachePrefix+barcode, data, priceCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Str("barcode", barcode).Msg("price cache set failed")
			}
		}
	}
	return resp, nil
}

func (s *productService) invalidatePriceCache(ctx context.Context, barcodes ...string) {
	if s.rdb == nil {
		return
	}
	for _, bc := range barcodes {
		if err := s.rdb.Del(ctx, priceCachePrefix+bc).Err(); err != nil {
			log.Debug().Err(err).Str("barcode", bc).Msg("price cache invalidation failed")
		}
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
