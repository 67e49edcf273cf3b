package dto

import "github.com/shopspring/decimal"

// DashboardFilter is bound from the query string of GET /v1/dashboard.
type DashboardFilter struct {
	Range     string `form:"range,default=last7" validate:"oneof=today last7 last30 all"`
	ProductID string `form:"product_id,default=all"`
}

// TrendPoint is one calendar-day bucket of the revenue/profit trend.
type TrendPoint struct {
	Date         string          `json:"date"` // YYYY-MM-DD, local
	Revenue      decimal.Decimal `json:"revenue"`
	Profit       decimal.Decimal `json:"profit"`
	Transactions int             `json:"transactions"`
}

// TopProduct is one entry of the top-N ranking, ordered by quantity sold.
type TopProduct struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// DashboardSummary carries the headline KPIs.
type DashboardSummary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
	// TotalMarginPct = profit / revenue × 100, zero when revenue is zero.
	TotalMarginPct decimal.Decimal `json:"total_margin_pct"`
	// TotalTransactions counts transactions, not line items — stable under
	// product filtering.
	TotalTransactions int             `json:"total_transactions"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	ItemsSold         int             `json:"items_sold"`
}

type DashboardResponse struct {
	Summary     DashboardSummary `json:"summary"`
	Trend       []TrendPoint     `json:"trend"`
	TopProducts []TopProduct     `json:"top_products"`
}
