package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/apierror"
	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/model"
	"github.com/azmi-amirullah/minimarket-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	dashboardCacheTTL = time.Minute
	dashboardVerKey   = "dashboard:ver"
	topProductsLimit  = 5
)

// AnalyticsService turns the flat transaction history into time-bucketed
// KPIs and rankings. It is read-only and deterministic: the same ledger and
// filters always produce identical output.
type AnalyticsService interface {
	Dashboard(ctx context.Context, filter dto.DashboardFilter) (*dto.DashboardResponse, error)
}

type analyticsService struct {
	sales repository.SaleRepository
	cache *DashboardCache
	now   func() time.Time
}

func NewAnalyticsService(sales repository.SaleRepository, cache *DashboardCache) AnalyticsService {
	return &analyticsService{sales: sales, cache: cache, now: time.Now}
}

func (s *analyticsService) Dashboard(ctx context.Context, filter dto.DashboardFilter) (*dto.DashboardResponse, error) {
	if s.cache != nil {
		if cached := s.cache.Get(ctx, filter); cached != nil {
			return cached, nil
		}
	}

	now := s.now()
	from, err := resolveWindow(filter.Range, now)
	if err != nil {
		return nil, err
	}

	var productFilter *uuid.UUID
	if filter.ProductID != "" && filter.ProductID != "all" {
		pid, err := uuid.Parse(filter.ProductID)
		if err != nil {
			return nil, apierror.Validation("invalid product id filter")
		}
		productFilter = &pid
	}

	sales, err := s.sales.ListSince(ctx, from)
	if err != nil {
		return nil, apierror.Persistence(err)
	}

	resp := aggregate(sales, productFilter, now.Location())
	if s.cache != nil {
		s.cache.Set(ctx, filter, resp)
	}
	return resp, nil
}

// resolveWindow maps a range keyword to its inclusive start instant.
// today = start of the current calendar day (local); last7/last30 are rolling
// windows anchored at now, not calendar-aligned; all = unbounded (zero time).
func resolveWindow(rangeKey string, now time.Time) (time.Time, error) {
	switch rangeKey {
	case "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	case "last7":
		return now.AddDate(0, 0, -7), nil
	case "last30":
		return now.AddDate(0, 0, -30), nil
	case "all", "":
		return time.Time{}, nil
	default:
		return time.Time{}, apierror.Validation("range must be one of today, last7, last30, all")
	}
}

// aggregate is the pure core of the analytics module. A transaction is
// retained when it falls in the window AND (no product filter OR at least one
// line matches). With a product filter active, only matching lines contribute
// to sums — but TotalTransactions still counts whole transactions. Revenue
// and profit are always recomputed from line items, never read from the
// stored transaction total.
func aggregate(sales []model.Sale, productFilter *uuid.UUID, loc *time.Location) *dto.DashboardResponse {
	type dayAcc struct {
		revenue decimal.Decimal
		profit  decimal.Decimal
		count   int
	}
	type productAcc struct {
		name     string
		quantity int
		revenue  decimal.Decimal
	}

	days := make(map[string]*dayAcc)
	products := make(map[uuid.UUID]*productAcc)

	totalRevenue := decimal.Zero
	totalProfit := decimal.Zero
	totalTransactions := 0
	itemsSold := 0

	for i := range sales {
		sale := &sales[i]
		matched := productFilter == nil
		if !matched {
			for _, item := range sale.Items {
				if item.ProductID == *productFilter {
					matched = true
					break
				}
			}
		}
		if !matched {
			continue
		}

		totalTransactions++
		dayKey := sale.CreatedAt.In(loc).Format(dateLayout)
		day, ok := days[dayKey]
		if !ok {
			day = &dayAcc{revenue: decimal.Zero, profit: decimal.Zero}
			days[dayKey] = day
		}
		day.count++

		for _, item := range sale.Items {
			if productFilter != nil && item.ProductID != *productFilter {
				continue
			}
			qty := decimal.NewFromInt(int64(item.Quantity))
			revenue := item.Price.Mul(qty)
			profit := item.Price.Sub(item.BuyPrice).Mul(qty)

			day.revenue = day.revenue.Add(revenue)
			day.profit = day.profit.Add(profit)
			totalRevenue = totalRevenue.Add(revenue)
			totalProfit = totalProfit.Add(profit)
			itemsSold += item.Quantity

			acc, ok := products[item.ProductID]
			if !ok {
				acc = &productAcc{revenue: decimal.Zero}
				products[item.ProductID] = acc
			}
			acc.name = item.ProductName
			acc.quantity += item.Quantity
			acc.revenue = acc.revenue.Add(revenue)
		}
	}

	// One trend point per distinct day, ascending by date key.
	trend := make([]dto.TrendPoint, 0, len(days))
	for key, acc := range days {
		trend = append(trend, dto.TrendPoint{
			Date:         key,
			Revenue:      acc.revenue,
			Profit:       acc.profit,
			Transactions: acc.count,
		})
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Date < trend[j].Date })

	// Top products by quantity; ties broken by revenue then id so that the
	// ranking is stable across calls.
	top := make([]dto.TopProduct, 0, len(products))
	for pid, acc := range products {
		top = append(top, dto.TopProduct{
			ProductID:   pid.String(),
			ProductName: acc.name,
			Quantity:    acc.quantity,
			Revenue:     acc.revenue,
		})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Quantity != top[j].Quantity {
			return top[i].Quantity > top[j].Quantity
		}
		if !top[i].Revenue.Equal(top[j].Revenue) {
			return top[i].Revenue.GreaterThan(top[j].Revenue)
		}
		return top[i].ProductID < top[j].ProductID
	})
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}

	marginPct := decimal.Zero
	if !totalRevenue.IsZero() {
		marginPct = totalProfit.Div(totalRevenue).Mul(oneHundred).Round(2)
	}
	avgOrder := decimal.Zero
	if totalTransactions > 0 {
		avgOrder = totalRevenue.Div(decimal.NewFromInt(int64(totalTransactions))).Round(2)
	}

	return &dto.DashboardResponse{
		Summary: dto.DashboardSummary{
			TotalRevenue:      totalRevenue,
			TotalProfit:       totalProfit,
			TotalMarginPct:    marginPct,
			TotalTransactions: totalTransactions,
			AverageOrderValue: avgOrder,
			ItemsSold:         itemsSold,
		},
		Trend:       trend,
		TopProducts: top,
	}
}

// ── Dashboard cache ──────────────────────────────────────────────────────────
// Versioned Redis cache: each committed sale bumps a version counter that is
// baked into every cache key, so invalidation never needs a key scan. Entries
// also expire after a short TTL. All cache failures degrade to a recompute.

type DashboardCache struct {
	rdb *redis.Client
}

func NewDashboardCache(rdb *redis.Client) *DashboardCache {
	if rdb == nil {
		return nil
	}
	return &DashboardCache{rdb: rdb}
}

func (c *DashboardCache) key(ctx context.Context, filter dto.DashboardFilter) string {
	ver, err := c.rdb.Get(ctx, dashboardVerKey).Int64()
	if err != nil {
		ver = 0
	}
	return fmt.Sprintf("dashboard:v%d:%s:%s", ver, filter.Range, filter.ProductID)
}

func (c *DashboardCache) Get(ctx context.Context, filter dto.DashboardFilter) *dto.DashboardResponse {
	data, err := c.rdb.Get(ctx, c.key(ctx, filter)).Bytes()
	if err != nil {
		return nil
	}
	var resp dto.DashboardResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil
	}
	return &resp
}

func (c *DashboardCache) Set(ctx context.Context, filter dto.DashboardFilter, resp *dto.DashboardResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(ctx, filter), data, dashboardCacheTTL).Err(); err != nil {
		log.Debug().Err(err).Msg("dashboard cache set failed")
	}
}

func (c *DashboardCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, dashboardVerKey).Err(); err != nil {
		log.Debug().Err(err).Msg("dashboard cache invalidation failed")
	}
}
