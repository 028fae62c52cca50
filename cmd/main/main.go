package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"stock-ledger-service/internal/config"
	"stock-ledger-service/internal/events"
	"stock-ledger-service/internal/handlers"
	"stock-ledger-service/internal/jobs"
	"stock-ledger-service/internal/middleware"
	"stock-ledger-service/internal/models"
	"stock-ledger-service/internal/repository"
	"stock-ledger-service/internal/services"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.InventoryItem{},
		&models.ItemHistory{},
		&models.InventoryTransaction{},
		&models.StockAlert{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderLine{},
		&models.DocumentSequence{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize logrus logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client (optional - caching degrades gracefully)
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis unavailable: %v (continuing without cache)", err)
			redisClient = nil
		} else {
			log.Println("✓ Connected to Redis")
		}
		cancel()
	} else {
		log.Println("REDIS_ADDR not configured, caching disabled")
	}

	// Initialize NATS event publisher (optional - graceful degradation if NATS unavailable)
	var eventPublisher *events.StockEventPublisher
	if cfg.NATSURL != "" {
		eventPublisher, err = events.NewStockEventPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("Warning: Failed to initialize NATS event publisher: %v", err)
			log.Println("Continuing without event publishing...")
		} else {
			log.Println("✓ Connected to NATS JetStream for event publishing")
			defer eventPublisher.Close()
		}
	} else {
		log.Println("NATS_URL not configured, event publishing disabled")
	}

	// Initialize repository and services
	repo := repository.NewLedgerRepository(db, redisClient)

	alertManager := services.NewAlertManager(logger)
	numberAllocator := services.NewNumberAllocator(logger)
	ledgerService := services.NewStockLedgerService(repo, alertManager, numberAllocator, eventPublisher, logger)
	catalogService := services.NewItemCatalogService(repo, logger)
	poService := services.NewPurchaseOrderService(repo, ledgerService, numberAllocator, nil, logger)

	// Initialize handlers
	itemHandler := handlers.NewItemHandler(catalogService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	alertHandler := handlers.NewAlertHandler(repo)
	poHandler := handlers.NewPurchaseOrderHandler(poService)
	healthHandler := handlers.NewHealthHandler(repo)
	importHandler := handlers.NewImportHandler(repo, catalogService)

	// Start the stock sweep job
	stockSweep := jobs.NewStockSweep(repo, alertManager, logger)
	if err := stockSweep.Start(cfg.StockSweepSchedule); err != nil {
		log.Printf("Warning: Failed to schedule stock sweep: %v", err)
	}

	// Initialize OpenTelemetry tracing
	var tracerProvider *tracing.TracerProvider
	if cfg.Environment == "production" {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("stock-ledger-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("stock-ledger-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "stock_ledger_service")
	log.Println("✓ Prometheus metrics initialized")

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add observability middleware (metrics + tracing)
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("stock-ledger-service"))

	// Add CORS middleware
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/health/extended", healthHandler.ExtendedHealthCheck)
	router.GET("/ready", handlers.HealthCheck)
	router.GET("/metrics", gosharedmw.Handler())

	// Protected API routes
	api := router.Group("/api/v1")

	// Istio validates JWT and injects x-jwt-claim-* headers; AuthContext
	// fills in a development identity when running without the mesh
	api.Use(gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
		RequireAuth:        false,
		AllowLegacyHeaders: true,
		SkipPaths:          []string{"/health", "/ready", "/metrics"},
	}))
	api.Use(middleware.AuthContext())

	// Item catalog routes
	items := api.Group("/items")
	{
		items.POST("", itemHandler.CreateItem)
		items.GET("", itemHandler.ListItems)
		items.GET("/:id", itemHandler.GetItem)
		items.PUT("/:id", itemHandler.UpdateItem)
		items.DELETE("/:id", middleware.RequireRole("admin"), itemHandler.DeleteItem)
		items.GET("/:id/history", itemHandler.GetItemHistory)
		items.GET("/:id/transactions", ledgerHandler.ListItemTransactions)

		// Import
		items.GET("/import/template", importHandler.GetItemImportTemplate)
		items.POST("/import", importHandler.ImportItems)
	}

	// Stock ledger routes
	transactions := api.Group("/transactions")
	{
		transactions.POST("", ledgerHandler.RecordTransaction)
		transactions.GET("", ledgerHandler.ListTransactions)
		transactions.GET("/:id", ledgerHandler.GetTransaction)
	}

	// Alert routes
	alerts := api.Group("/alerts")
	{
		alerts.GET("", alertHandler.ListAlerts)
		alerts.GET("/:id", alertHandler.GetAlert)
		alerts.POST("/:id/acknowledge", alertHandler.AcknowledgeAlert)
		alerts.POST("/:id/resolve", alertHandler.ResolveAlert)
	}

	// Purchase order routes
	purchaseOrders := api.Group("/purchase-orders")
	{
		purchaseOrders.POST("", poHandler.CreatePurchaseOrder)
		purchaseOrders.GET("", poHandler.ListPurchaseOrders)
		purchaseOrders.GET("/:id", poHandler.GetPurchaseOrder)
		purchaseOrders.POST("/:id/submit", poHandler.SubmitPurchaseOrder)
		purchaseOrders.POST("/:id/approve", middleware.RequireRole("admin"), poHandler.ApprovePurchaseOrder)
		purchaseOrders.POST("/:id/send", poHandler.SendPurchaseOrder)
		purchaseOrders.POST("/:id/receive", poHandler.ReceivePurchaseOrder)
		purchaseOrders.POST("/:id/cancel", poHandler.CancelPurchaseOrder)
		purchaseOrders.POST("/:id/close", poHandler.ClosePurchaseOrder)

		purchaseOrders.POST("/:id/lines", poHandler.AddPurchaseOrderLine)
		purchaseOrders.PUT("/:id/lines/:lineId", poHandler.UpdatePurchaseOrderLine)
		purchaseOrders.DELETE("/:id/lines/:lineId", poHandler.DeletePurchaseOrderLine)
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Stock ledger service starting on port %s", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down stock-ledger-service...")

	stockSweep.Stop()

	// Shutdown tracer provider
	if tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		} else {
			log.Println("✓ Tracer provider shut down")
		}
	}

	log.Println("Stock ledger service stopped")
}
