package router

import (
	"time"

	"github.com/azmi-amirullah/minimarket-pos/internal/config"
	"github.com/azmi-amirullah/minimarket-pos/internal/handler"
	"github.com/azmi-amirullah/minimarket-pos/internal/infra"
	"github.com/azmi-amirullah/minimarket-pos/internal/middleware"
	"github.com/azmi-amirullah/minimarket-pos/internal/repository"
	"github.com/azmi-amirullah/minimarket-pos/internal/service"
	"github.com/azmi-amirullah/minimarket-pos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Deps are the externally-constructed dependencies the router wires together.
type Deps struct {
	Cfg    *config.Config
	DB     *gorm.DB
	RDB    *redis.Client
	Remote *infra.RemoteClient
	CB     *infra.CircuitBreaker
}

// Services exposes the service layer to cmd/server so the worker pool can
// share the exact same instances the HTTP handlers use.
type Services struct {
	Sync  service.SyncService
	Sales repository.SaleRepository
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(d Deps, dispatcher *worker.Dispatcher) (*gin.Engine, *Services) {
	cfg := d.Cfg
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(d.DB)
	productRepo := repository.NewProductRepository(d.DB)
	batchRepo := repository.NewBatchRepository(d.DB)
	saleRepo := repository.NewSaleRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	cache := service.NewDashboardCache(d.RDB)

	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo, batchRepo, d.RDB)
	inventorySvc := service.NewInventoryService(productRepo, batchRepo, saleRepo)
	saleSvc := service.NewSaleService(saleRepo, productRepo, inventorySvc, dispatcher, cache,
		decimal.NewFromFloat(cfg.DefaultTaxRatePct))
	analyticsSvc := service.NewAnalyticsService(saleRepo, cache)
	syncSvc := service.NewSyncService(d.Remote, d.CB, productRepo, batchRepo, saleRepo, cache)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	salesH := handler.NewSalesHandler(saleSvc, saleRepo, cfg.PDFStoragePath, cfg.StoreName)
	dashboardH := handler.NewDashboardHandler(analyticsSvc)
	syncH := handler.NewSyncHandler(syncSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.RDB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Price check — no auth required (kiosk scanner)
	r.GET("/v1/price/:barcode", productsH.PriceCheck)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/auth/me", authH.Me)

		// Roles: cashier, admin — declared per-endpoint
		v1.POST("/sales", middleware.RequireRole("cashier", "admin"), salesH.Checkout)
		v1.GET("/sales", middleware.RequireRole("cashier", "admin"), salesH.List)
		v1.GET("/sales/:id", middleware.RequireRole("cashier", "admin"), salesH.Get)
		v1.GET("/sales/:id/receipt", middleware.RequireRole("cashier", "admin"), salesH.Receipt)

		v1.GET("/products", middleware.RequireRole("cashier", "admin"), productsH.List)
		v1.GET("/products/stock", middleware.RequireRole("cashier", "admin"), inventoryH.ListStock)
		v1.GET("/products/:id", middleware.RequireRole("cashier", "admin"), productsH.Get)
		// Catalog writes — admin only
		prods := v1.Group("/products", middleware.RequireRole("admin"))
		{
			prods.POST("", productsH.Create)
			prods.PUT("/:id", productsH.Update)
			prods.DELETE("/:id", productsH.Delete)
		}

		batches := v1.Group("/batches", middleware.RequireRole("admin"))
		{
			batches.POST("", inventoryH.AddBatch)
			batches.PUT("/:id", inventoryH.UpdateBatch)
			batches.POST("/:id/sold-out", inventoryH.ToggleSoldOut)
			batches.DELETE("/:id", inventoryH.DeleteBatch)
			batches.POST("/:id/restore", inventoryH.RestoreBatch)
		}

		v1.GET("/dashboard", middleware.RequireRole("cashier", "admin"), dashboardH.Dashboard)

		v1.POST("/sync", middleware.RequireRole("admin"), syncH.Sync)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, &Services{Sync: syncSvc, Sales: saleRepo}
}
