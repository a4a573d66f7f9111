package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	catalogapp "github.com/henrytires/backend/internal/application/catalog"
	identityapp "github.com/henrytires/backend/internal/application/identity"
	inventoryapp "github.com/henrytires/backend/internal/application/inventory"
	pricingapp "github.com/henrytires/backend/internal/application/pricing"
	salesapp "github.com/henrytires/backend/internal/application/sales"
	"github.com/henrytires/backend/internal/domain/shared"
	"github.com/henrytires/backend/internal/infrastructure/auth"
	"github.com/henrytires/backend/internal/infrastructure/config"
	"github.com/henrytires/backend/internal/infrastructure/logger"
	"github.com/henrytires/backend/internal/infrastructure/persistence"
	"github.com/henrytires/backend/internal/interfaces/http/handler"
	"github.com/henrytires/backend/internal/interfaces/http/middleware"
	"github.com/henrytires/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting tire inventory backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLogLevel := gormlogger.Silent
	if cfg.Log.Level == "debug" {
		gormLogLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	// Repositories
	txRepo := persistence.NewGormTransactionRepository(db.DB)
	summaryRepo := persistence.NewGormSummaryRepository(db.DB)
	priceRepo := persistence.NewGormItemPriceRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	sequences := persistence.NewGormSequenceGenerator(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	clock := shared.SystemClock{}
	jwtService := auth.NewJWTService(cfg.JWT)

	// Application services
	txService := inventoryapp.NewTransactionService(
		txRepo, summaryRepo, priceRepo, itemRepo, branchRepo, scope, clock, log)
	saleService := salesapp.NewSaleService(
		saleRepo, itemRepo, branchRepo, priceRepo, summaryRepo, txService, scope, sequences, clock, log)
	priceService := pricingapp.NewPriceService(priceRepo, itemRepo, clock, log)
	catalogService := catalogapp.NewCatalogService(itemRepo, branchRepo, summaryRepo, clock, log)
	authService := identityapp.NewAuthService(userRepo, branchRepo, jwtService, clock, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(middleware.CORSWithConfig(corsConfig))

	authConfig := middleware.DefaultAuthConfig(jwtService)
	authConfig.Logger = log

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.AuthWithConfig(authConfig))
	r.Register(handler.NewAuthHandler(authService))
	r.Register(handler.NewTransactionHandler(txService))
	r.Register(handler.NewSaleHandler(saleService))
	r.Register(handler.NewPriceHandler(priceService))
	r.Register(handler.NewCatalogHandler(catalogService))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
