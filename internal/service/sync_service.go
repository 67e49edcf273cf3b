package service

import (
	"context"
	"fmt"
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/apierror"
	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/infra"
	"github.com/azmi-amirullah/minimarket-pos/internal/model"
	"github.com/azmi-amirullah/minimarket-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const syncTimeout = 2 * time.Minute

// SyncService reconciles the local store against the remote canonical
// backend. The pull half swaps the full remote snapshot into Postgres inside
// one transaction — partial failure leaves the prior state intact — while
// preserving local sales the remote has not seen yet. The push half uploads
// those sales afterwards; the remote upserts by id, so a retried push is
// idempotent.
type SyncService interface {
	Sync(ctx context.Context) (*dto.SyncResult, error)
}

type syncService struct {
	remote   *infra.RemoteClient
	cb       *infra.CircuitBreaker
	products repository.ProductRepository
	batches  repository.BatchRepository
	sales    repository.SaleRepository
	cache    *DashboardCache
}

func NewSyncService(
	remote *infra.RemoteClient,
	cb *infra.CircuitBreaker,
	products repository.ProductRepository,
	batches repository.BatchRepository,
	sales repository.SaleRepository,
	cache *DashboardCache,
) SyncService {
	return &syncService{
		remote:   remote,
		cb:       cb,
		products: products,
		batches:  batches,
		sales:    sales,
		cache:    cache,
	}
}

func (s *syncService) Sync(ctx context.Context) (*dto.SyncResult, error) {
	if s.remote == nil || !s.remote.Enabled() {
		return nil, apierror.Validation("no remote backend is configured")
	}

	ctx, cancel := context.WithTimeout(ctx, syncTimeout)
	defer cancel()

	// 1. Fetch the canonical snapshot behind the circuit breaker. Nothing is
	//    written until the whole payload has parsed successfully.
	var snapshot *dto.RemoteSnapshot
	err := s.cb.Execute(func() error {
		var err error
		snapshot, err = s.remote.FetchSnapshot(ctx)
		return err
	})
	if err != nil {
		return nil, apierror.Sync("remote snapshot fetch failed", err)
	}

	products, batches, remoteSales, err := mapSnapshot(snapshot)
	if err != nil {
		return nil, apierror.Sync("remote snapshot is malformed", err)
	}

	// 2. Swap the snapshot in, keeping local sales the remote hasn't seen.
	remoteSaleIDs := make(map[uuid.UUID]struct{}, len(remoteSales))
	for _, sale := range remoteSales {
		remoteSaleIDs[sale.ID] = struct{}{}
	}
	unsynced, err := s.sales.ListUnsynced(ctx, 0)
	if err != nil {
		return nil, apierror.Persistence(err)
	}
	for _, sale := range unsynced {
		if _, ok := remoteSaleIDs[sale.ID]; ok {
			continue
		}
		remoteSales = append(remoteSales, sale)
	}

	txErr := runTx(ctx, s.sales.DB(), func(tx *gorm.DB) error {
		if err := s.products.ReplaceAllTx(tx, products); err != nil {
			return err
		}
		if err := s.batches.ReplaceAllTx(tx, batches); err != nil {
			return err
		}
		return s.sales.ReplaceAllTx(tx, remoteSales)
	})
	if txErr != nil {
		return nil, apierror.Persistence(txErr)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	// 3. Push local sales upward. A push failure does not undo the pull —
	//    the sales stay unsynced and the next cycle retries them.
	pushed := 0
	if len(unsynced) > 0 {
		outbound := make([]dto.RemoteSale, 0, len(unsynced))
		ids := make([]uuid.UUID, 0, len(unsynced))
		for _, sale := range unsynced {
			outbound = append(outbound, saleToRemote(&sale))
			ids = append(ids, sale.ID)
		}
		pushErr := s.cb.Execute(func() error {
			return s.remote.PushSales(ctx, outbound)
		})
		if pushErr != nil {
			log.Warn().Err(pushErr).Int("sales", len(unsynced)).Msg("sync: push failed, will retry next cycle")
		} else {
			if err := s.sales.MarkSynced(ctx, ids, time.Now()); err != nil {
				log.Warn().Err(err).Msg("sync: could not mark sales as synced")
			} else {
				pushed = len(ids)
			}
		}
	}

	return &dto.SyncResult{
		PulledProducts: len(products),
		PulledBatches:  len(batches),
		PulledSales:    len(remoteSaleIDs),
		PushedSales:    pushed,
		CompletedAt:    time.Now().Format(time.RFC3339),
	}, nil
}

// mapSnapshot converts the remote payload into local models, failing on the
// first malformed record so a bad snapshot can never be half-applied.
func mapSnapshot(snapshot *dto.RemoteSnapshot) ([]model.Product, []model.StockBatch, []model.Sale, error) {
	products := make([]model.Product, 0, len(snapshot.Products))
	for _, rp := range snapshot.Products {
		id, err := uuid.Parse(rp.ID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("product %q: bad id: %w", rp.ID, err)
		}
		products = append(products, model.Product{
			ID:       id,
			Barcode:  rp.Barcode,
			Name:     rp.Name,
			Price:    rp.Price,
			BuyPrice: rp.BuyPrice,
			Sold:     rp.Sold,
		})
	}

	batches := make([]model.StockBatch, 0, len(snapshot.Batches))
	for _, rb := range snapshot.Batches {
		id, err := uuid.Parse(rb.ID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("batch %q: bad id: %w", rb.ID, err)
		}
		productID, err := uuid.Parse(rb.ProductID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("batch %q: bad product id: %w", rb.ID, err)
		}
		expiration, err := time.Parse(dateLayout, rb.Expiration)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("batch %q: bad expiration: %w", rb.ID, err)
		}
		addedAt, err := time.Parse(time.RFC3339, rb.AddedAt)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("batch %q: bad added_at: %w", rb.ID, err)
		}
		batches = append(batches, model.StockBatch{
			ID:         id,
			ProductID:  productID,
			Expiration: expiration,
			AddedAt:    addedAt,
			Quantity:   rb.Quantity,
			SoldOut:    rb.SoldOut,
		})
	}

	sales := make([]model.Sale, 0, len(snapshot.Sales))
	syncedAt := time.Now()
	for _, rs := range snapshot.Sales {
		id, err := uuid.Parse(rs.ID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sale %q: bad id: %w", rs.ID, err)
		}
		createdAt, err := time.Parse(time.RFC3339, rs.Timestamp)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sale %q: bad timestamp: %w", rs.ID, err)
		}
		sale := model.Sale{
			ID:          id,
			Subtotal:    rs.TotalAmount,
			TotalAmount: rs.TotalAmount,
			AmountPaid:  rs.AmountPaid,
			Change:      rs.Change,
			SyncedAt:    &syncedAt, // came from the remote, nothing to push back
			CreatedAt:   createdAt,
		}
		for _, line := range rs.Lines {
			productID, err := uuid.Parse(line.ProductID)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("sale %q: bad line product id: %w", rs.ID, err)
			}
			sale.Items = append(sale.Items, model.SaleItem{
				SaleID:         id,
				ProductID:      productID,
				ProductName:    line.ProductName,
				ProductBarcode: line.ProductBarcode,
				Price:          line.Price,
				BuyPrice:       line.BuyPrice,
				Quantity:       line.Quantity,
			})
		}
		sales = append(sales, sale)
	}

	return products, batches, sales, nil
}

func saleToRemote(sale *model.Sale) dto.RemoteSale {
	lines := make([]dto.RemoteSaleLine, 0, len(sale.Items))
	for _, item := range sale.Items {
		lines = append(lines, dto.RemoteSaleLine{
			ProductID:      item.ProductID.String(),
			ProductName:    item.ProductName,
			ProductBarcode: item.ProductBarcode,
			Price:          item.Price,
			BuyPrice:       item.BuyPrice,
			Quantity:       item.Quantity,
		})
	}
	return dto.RemoteSale{
		ID:          sale.ID.String(),
		Timestamp:   sale.CreatedAt.Format(time.RFC3339),
		Lines:       lines,
		TotalAmount: sale.TotalAmount,
		AmountPaid:  sale.AmountPaid,
		Change:      sale.Change,
	}
}
