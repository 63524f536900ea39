package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Daveman-1/BookstoreFrontEnd/api/swagger" // swagger docs
	"github.com/Daveman-1/BookstoreFrontEnd/internal/cart"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/client"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/config"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/handler"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/imaging"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/logger"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/metrics"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/middleware"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/receipt"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/service"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/session"
	"github.com/Daveman-1/BookstoreFrontEnd/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const (
	janitorInterval = 5 * time.Minute
	shutdownTimeout = 30 * time.Second
)

// @title           Bookstore POS Web API
// @version         1.0
// @description     Browser-facing gateway of the bookstore point of sale: pages, cart, receipts and spreadsheets.
// @host            localhost:8080
// @BasePath        /
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl := logger.New(cfg.Log)
	defer func() { _ = zl.Sync() }()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, closeStore, err := newSessionStore(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("Failed to set up session store", zap.Error(err))
	}
	defer closeStore()

	m := metrics.New("bookstore_web")

	demo, err := client.NewDemoAuthenticator(string(cfg.JWTSecret()), cfg.JWT.Expiration)
	if err != nil {
		zl.Fatal("Failed to set up demo accounts", zap.Error(err))
	}
	backend, err := client.NewClient(client.Options{
		BaseURL:      cfg.Backend.BaseURL,
		Timeout:      cfg.Backend.Timeout,
		Logger:       zl,
		Metrics:      m,
		Demo:         demo,
		DemoMode:     cfg.Backend.DemoMode,
		DemoFallback: cfg.Backend.DemoFallback,
	})
	if err != nil {
		zl.Fatal("Failed to set up backend client", zap.Error(err))
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(zl, m, cfg.HTTP.CORSAllowOrigins)
	go wsHub.Run(ctx)

	carts := cart.NewRegistry()
	go sweepCarts(ctx, carts, cfg.Session.TTL, zl)

	renderer := receipt.NewChromedpRenderer(receipt.ChromedpConfig{
		RemoteURL: cfg.Receipt.ChromeURL,
		NoSandbox: cfg.Receipt.NoSandbox,
		Timeout:   cfg.Receipt.RenderTimeout,
		Logger:    zl,
	})
	defer func() { _ = renderer.Close() }()
	receipts := receipt.NewGenerator(renderer, cfg.Receipt.Currency)

	images := imaging.NewNormalizer(imaging.Options{
		MaxBytes:     cfg.Image.MaxBytes,
		MaxDimension: cfg.Image.MaxDimension,
		Quality:      cfg.Image.Quality,
	})

	// Set up dependencies (Service -> Handler)
	services := handler.PageServices{
		Auth:       service.NewAuthService(carts, zl),
		Inventory:  service.NewInventoryService(images, wsHub, cfg.Store.LowStockThreshold, zl),
		Categories: service.NewCategoryService(cfg.Store.LowStockThreshold),
		Sales:      service.NewSalesService(carts, receipts, wsHub, m, zl),
		Approvals:  service.NewApprovalService(wsHub, zl),
		Users:      service.NewUserService(),
		Settings:   service.NewSettingsService(images, zl),
		Statistics: service.NewStatisticsService(cfg.Store.LowStockThreshold, zl),
	}

	middleware.SetupValidator()
	router := gin.New()
	router.Use(logger.Recovery(zl), logger.GinMiddleware(zl), m.Middleware())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept", middleware.TabHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	if cfg.HTTP.SwaggerEnabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"sockets": wsHub.ClientCount(),
			"tabs":    carts.Len(),
		})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.Use(middleware.Tab(middleware.TabConfig{
		CookieName: cfg.Session.CookieName,
		MaxAge:     int(cfg.Session.TTL.Seconds()),
		Secure:     cfg.Session.Secure,
	}, store, backend, zl))

	actions := router.Group(middleware.ActionsPrefix)
	handler.NewAuthHandler(services.Auth).RegisterRoutes(actions)
	handler.NewInventoryHandler(services.Inventory, cfg.HTTP.MaxUploadBytes).RegisterRoutes(actions)
	handler.NewCategoryHandler(services.Categories).RegisterRoutes(actions)
	handler.NewSalesHandler(services.Sales).RegisterRoutes(actions)
	handler.NewApprovalHandler(services.Approvals, cfg.HTTP.MaxUploadBytes).RegisterRoutes(actions)
	handler.NewUserHandler(services.Users).RegisterRoutes(actions)
	handler.NewSettingsHandler(services.Settings, cfg.HTTP.MaxUploadBytes).RegisterRoutes(actions)
	handler.NewStatisticsHandler(services.Statistics).RegisterRoutes(actions)

	var hints []client.DemoCredential
	if cfg.Backend.DemoMode || cfg.Backend.DemoFallback {
		hints = demo.Credentials()
	}
	handler.NewEventHandler(wsHub).RegisterRoutes(router)
	handler.NewPageHandler(services, hints).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		zl.Info("Server starting",
			zap.String("addr", srv.Addr),
			zap.String("backend", backend.BaseURL()),
			zap.String("session_store", cfg.Session.Store),
			zap.Bool("demo_mode", backend.DemoMode()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zl.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}
	stop()
	zl.Info("Server exited gracefully")
}

// newSessionStore builds the tab storage named by session.store
func newSessionStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (session.Storage, func(), error) {
	if cfg.Session.Store == "redis" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := session.NewRedisStorage(rdb, cfg.Session.TTL)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		zl.Info("Connected to Redis session store", zap.String("addr", cfg.Redis.Addr))
		return store, func() { _ = rdb.Close() }, nil
	}

	store := session.NewMemoryStorage(cfg.Session.TTL)
	go store.RunJanitor(ctx, janitorInterval)
	return store, func() {}, nil
}

// sweepCarts drops carts of tabs idle longer than the session lifetime
func sweepCarts(ctx context.Context, carts *cart.Registry, maxIdle time.Duration, zl *zap.Logger) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := carts.Sweep(maxIdle); n > 0 {
				zl.Debug("dropped idle carts", zap.Int("count", n))
			}
		}
	}
}
