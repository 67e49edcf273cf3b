//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v
//
// Covered flows:
//   - login → create product → add batch → checkout → list sales
//   - derived stock after a sale (batches untouched, sold count up)
//   - oversell accepted but flagged as a stock conflict
//   - short payment rejected, nothing persisted
//   - dashboard reflects the day's sales

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/config"
	"github.com/azmi-amirullah/minimarket-pos/internal/dto"
	"github.com/azmi-amirullah/minimarket-pos/internal/infra"
	"github.com/azmi-amirullah/minimarket-pos/internal/router"
	"github.com/azmi-amirullah/minimarket-pos/internal/worker"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Suite setup ──────────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // admin JWT
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("minimarket_test"),
		tcPostgres.WithUsername("minimarket"),
		tcPostgres.WithPassword("minimarket"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
		StoreName:          "E2E Market",
		DefaultTaxRatePct:  0,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed admin user
	hash, err := bcrypt.GenerateFromPassword([]byte("e2e-password"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Exec(
		`INSERT INTO users (username, display_name, password_hash, role, active)
		 VALUES (?, ?, ?, ?, true)`,
		"admin-e2e", "Admin E2E", string(hash), "admin",
	).Error)

	remote := infra.NewRemoteClient("") // sync disabled
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	dispatcher := worker.NewDispatcher(rdb)

	r, _ := router.New(router.Deps{
		Cfg:    cfg,
		DB:     db,
		RDB:    rdb,
		Remote: remote,
		CB:     cb,
	}, dispatcher)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "admin-e2e", "password": "e2e-password"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken}
}

func (env *testEnv) createProduct(t *testing.T, name, barcode, price, buyPrice string) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/products",
		jsonBody(t, map[string]any{
			"name":      name,
			"barcode":   barcode,
			"price":     price,
			"buy_price": buyPrice,
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var prod struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &prod)
	return prod.ID
}

func (env *testEnv) addBatch(t *testing.T, productID string, qty int) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/batches",
		jsonBody(t, map[string]any{
			"product_id": productID,
			"expiration": time.Now().AddDate(0, 6, 0).Format("2006-01-02"),
			"quantity":   qty,
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var batch struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &batch)
	return batch.ID
}

func (env *testEnv) availableStock(t *testing.T, productID string) int {
	t.Helper()
	resp := do(t, env.server, "GET", "/v1/products/stock", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rows []struct {
		ID             string `json:"id"`
		AvailableStock int    `json:"available_stock"`
	}
	decodeJSON(t, resp, &rows)
	for _, row := range rows {
		if row.ID == productID {
			return row.AvailableStock
		}
	}
	t.Fatalf("product %s not in stock listing", productID)
	return 0
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestE2E_FullSaleCycle(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.createProduct(t, "Soda 500ml", "7890001000001", "2.50", "1.50")
	env.addBatch(t, prodID, 20)
	require.Equal(t, 20, env.availableStock(t, prodID))

	saleResp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"lines":       []map[string]any{{"product_id": prodID, "quantity": 3}},
			"discount":    "0",
			"amount_paid": "10.00",
		}), env.token)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)
	var sale dto.SaleResponse
	decodeJSON(t, saleResp, &sale)
	assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("7.50")), "total %s", sale.TotalAmount)
	assert.True(t, sale.Change.Equal(decimal.RequireFromString("2.50")), "change %s", sale.Change)
	assert.False(t, sale.StockConflict)

	// Stock is derived, not stored: 20 - 3 sold.
	assert.Equal(t, 17, env.availableStock(t, prodID))

	listResp := do(t, env.server, "GET",
		fmt.Sprintf("/v1/sales?date=%s", time.Now().Format("2006-01-02")), nil, env.token)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list struct {
		Total int64 `json:"total"`
	}
	decodeJSON(t, listResp, &list)
	assert.Equal(t, int64(1), list.Total)
}

func TestE2E_OversellFlaggedButAccepted(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.createProduct(t, "Juice 1L", "7890001000002", "3.00", "2.00")
	env.addBatch(t, prodID, 2)

	saleResp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"lines":       []map[string]any{{"product_id": prodID, "quantity": 5}},
			"discount":    "0",
			"amount_paid": "15.00",
		}), env.token)
	require.Equal(t, http.StatusCreated, saleResp.StatusCode)
	var sale dto.SaleResponse
	decodeJSON(t, saleResp, &sale)
	assert.True(t, sale.StockConflict)

	// Derived stock goes negative and stays negative.
	assert.Equal(t, -3, env.availableStock(t, prodID))
}

func TestE2E_ShortPaymentRejected(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.createProduct(t, "Milk 1L", "7890001000003", "2.00", "1.20")
	env.addBatch(t, prodID, 10)

	saleResp := do(t, env.server, "POST", "/v1/sales",
		jsonBody(t, map[string]any{
			"lines":       []map[string]any{{"product_id": prodID, "quantity": 3}},
			"discount":    "0",
			"amount_paid": "5.00",
		}), env.token)
	defer saleResp.Body.Close()
	require.Equal(t, http.StatusBadRequest, saleResp.StatusCode)

	// Nothing was persisted.
	assert.Equal(t, 10, env.availableStock(t, prodID))
}

func TestE2E_DashboardReflectsSales(t *testing.T) {
	env := setupTestEnv(t)

	prodID := env.createProduct(t, "Bread", "7890001000004", "1.50", "0.50")
	env.addBatch(t, prodID, 30)

	for i := 0; i < 2; i++ {
		saleResp := do(t, env.server, "POST", "/v1/sales",
			jsonBody(t, map[string]any{
				"lines":       []map[string]any{{"product_id": prodID, "quantity": 2}},
				"discount":    "0",
				"amount_paid": "3.00",
			}), env.token)
		require.Equal(t, http.StatusCreated, saleResp.StatusCode)
		saleResp.Body.Close()
	}

	dashResp := do(t, env.server, "GET", "/v1/dashboard?range=today", nil, env.token)
	require.Equal(t, http.StatusOK, dashResp.StatusCode)
	var dash dto.DashboardResponse
	decodeJSON(t, dashResp, &dash)
	assert.True(t, dash.Summary.TotalRevenue.Equal(decimal.RequireFromString("6.00")),
		"revenue %s", dash.Summary.TotalRevenue)
	assert.Equal(t, 2, dash.Summary.TotalTransactions)
	assert.Equal(t, 4, dash.Summary.ItemsSold)
	require.NotEmpty(t, dash.TopProducts)
	assert.Equal(t, prodID, dash.TopProducts[0].ProductID)
	assert.Equal(t, 4, dash.TopProducts[0].Quantity)
}
