package service

// In-memory repository stubs shared by the service unit tests. They mimic the
// GORM implementations closely enough for service-level behavior: nil *gorm.DB
// values flow through runTx in unit-test mode.

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/model"
	"github.com/azmi-amirullah/minimarket-pos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Product repo stub ─────────────────────────────────────────────────────────

type stubProductRepo struct {
	products   map[uuid.UUID]*model.Product
	failWrites bool
	replaced   []model.Product
	replaceRan bool
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) put(p model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = &p
	return &p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if r.failWrites {
		return errors.New("write failed")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	return r.Create(context.Background(), p)
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) BarcodeExists(_ context.Context, barcode string, excludeID *uuid.UUID) (bool, error) {
	for _, p := range r.products {
		if p.Barcode == barcode && (excludeID == nil || p.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	all, _ := r.ListAll(context.Background())
	return all, int64(len(all)), nil
}

func (r *stubProductRepo) ListAll(_ context.Context) ([]model.Product, error) {
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	if r.failWrites {
		return errors.New("write failed")
	}
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) IncrementSoldTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	if r.failWrites {
		return errors.New("write failed")
	}
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Sold += delta
	return nil
}

func (r *stubProductRepo) ReplaceAllTx(_ *gorm.DB, products []model.Product) error {
	r.replaceRan = true
	r.replaced = products
	r.products = make(map[uuid.UUID]*model.Product, len(products))
	for i := range products {
		r.products[products[i].ID] = &products[i]
	}
	return nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Batch repo stub ───────────────────────────────────────────────────────────

type stubBatchRepo struct {
	batches  map[uuid.UUID]*model.StockBatch
	replaced []model.StockBatch
}

func newStubBatchRepo() *stubBatchRepo {
	return &stubBatchRepo{batches: make(map[uuid.UUID]*model.StockBatch)}
}

func (r *stubBatchRepo) put(b model.StockBatch) *model.StockBatch {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	r.batches[b.ID] = &b
	return &b
}

func (r *stubBatchRepo) Create(_ context.Context, b *model.StockBatch) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	r.batches[b.ID] = b
	return nil
}

func (r *stubBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StockBatch, error) {
	b, ok := r.batches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (r *stubBatchRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.StockBatch, error) {
	out := []model.StockBatch{}
	for _, b := range r.batches {
		if b.ProductID == productID && b.DeletedAt == nil {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (r *stubBatchRepo) ListActive(_ context.Context) ([]model.StockBatch, error) {
	out := []model.StockBatch{}
	for _, b := range r.batches {
		if b.DeletedAt == nil {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (r *stubBatchRepo) Update(_ context.Context, b *model.StockBatch) error {
	if _, ok := r.batches[b.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.batches[b.ID] = b
	return nil
}

func (r *stubBatchRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	b, ok := r.batches[id]
	if !ok || b.DeletedAt != nil {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	b.DeletedAt = &now
	return nil
}

func (r *stubBatchRepo) Restore(_ context.Context, id uuid.UUID) error {
	b, ok := r.batches[id]
	if !ok || b.DeletedAt == nil {
		return gorm.ErrRecordNotFound
	}
	b.DeletedAt = nil
	return nil
}

func (r *stubBatchRepo) AdoptProductTx(_ *gorm.DB, provisionalID, productID uuid.UUID) error {
	for _, b := range r.batches {
		if b.ProductID == provisionalID {
			b.ProductID = productID
		}
	}
	return nil
}

func (r *stubBatchRepo) ReplaceAllTx(_ *gorm.DB, batches []model.StockBatch) error {
	r.replaced = batches
	r.batches = make(map[uuid.UUID]*model.StockBatch, len(batches))
	for i := range batches {
		r.batches[batches[i].ID] = &batches[i]
	}
	return nil
}

func (r *stubBatchRepo) DB() *gorm.DB { return nil }

var _ repository.BatchRepository = (*stubBatchRepo)(nil)

// ── Sale repo stub ────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	sales      []*model.Sale
	failCreate bool
	replaced   []model.Sale
	replaceRan bool
	marked     []uuid.UUID
}

func newStubSaleRepo() *stubSaleRepo { return &stubSaleRepo{} }

func (r *stubSaleRepo) add(s model.Sale) *model.Sale {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	sale := s
	r.sales = append(r.sales, &sale)
	return &sale
}

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	if r.failCreate {
		return errors.New("insert failed")
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	r.sales = append(r.sales, s)
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	for _, s := range r.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSaleRepo) List(_ context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	out := []model.Sale{}
	for _, s := range r.sales {
		if filter.Date != "" && s.CreatedAt.Format("2006-01-02") != filter.Date {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) ListSince(_ context.Context, from time.Time) ([]model.Sale, error) {
	out := []model.Sale{}
	for _, s := range r.sales {
		if !from.IsZero() && s.CreatedAt.Before(from) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *stubSaleRepo) SoldQuantities(_ context.Context) (map[uuid.UUID]int, error) {
	sold := make(map[uuid.UUID]int)
	for _, s := range r.sales {
		for _, item := range s.Items {
			sold[item.ProductID] += item.Quantity
		}
	}
	return sold, nil
}

func (r *stubSaleRepo) SoldQuantityByProduct(_ context.Context, productID uuid.UUID) (int, error) {
	sold, _ := r.SoldQuantities(context.Background())
	return sold[productID], nil
}

func (r *stubSaleRepo) ListUnsynced(_ context.Context, limit int) ([]model.Sale, error) {
	out := []model.Sale{}
	for _, s := range r.sales {
		if s.SyncedAt == nil {
			out = append(out, *s)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *stubSaleRepo) MarkSynced(_ context.Context, ids []uuid.UUID, at time.Time) error {
	r.marked = append(r.marked, ids...)
	for _, s := range r.sales {
		for _, id := range ids {
			if s.ID == id {
				t := at
				s.SyncedAt = &t
			}
		}
	}
	return nil
}

func (r *stubSaleRepo) ReplaceAllTx(_ *gorm.DB, sales []model.Sale) error {
	r.replaceRan = true
	r.replaced = sales
	r.sales = r.sales[:0]
	for i := range sales {
		sale := sales[i]
		r.sales = append(r.sales, &sale)
	}
	return nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── User repo stub ────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.UserRepository = (*stubUserRepo)(nil)
