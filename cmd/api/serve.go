package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/pricelist_api/internal/cache"
	"github.com/GTDGit/pricelist_api/internal/database"
	"github.com/GTDGit/pricelist_api/internal/handler"
	"github.com/GTDGit/pricelist_api/internal/metrics"
	"github.com/GTDGit/pricelist_api/internal/middleware"
	"github.com/GTDGit/pricelist_api/internal/repository"
	"github.com/GTDGit/pricelist_api/internal/service"
	"github.com/GTDGit/pricelist_api/internal/storage"
	"github.com/GTDGit/pricelist_api/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	// 1. Config and logger
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log.Info().Str("env", cfg.Env).Msg("starting pricelist api")

	// 2. Database and migrations
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := database.MigrateUp(db.DB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// 3. Redis product cache (optional)
	var (
		productCache service.ProductListCache
		cacheCheck   handler.HealthCheck
	)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		productCache = cache.NewProductCache(redisClient, cfg.CacheTTL)
		cacheCheck = redisClient.Ping
		log.Info().Msg("redis connected successfully")
	} else {
		log.Info().Msg("REDIS_HOST not set, product cache disabled")
	}

	// 4. File storage
	disk, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		return err
	}

	// 5. Token manager
	tokens, err := utils.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	// 6. Repositories and services
	adminRepo := repository.NewAdminUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	authSvc := service.NewAdminAuthService(adminRepo, tokens)
	catalogSvc := service.NewCatalogService(catalogRepo, productCache)
	logoSvc := service.NewLogoService(catalogRepo, disk, cfg.UploadMaxBytes)

	handlers := &handler.Handlers{
		Health:  handler.NewHealthHandler(db.PingContext, cacheCheck),
		Auth:    handler.NewAuthHandler(authSvc),
		Product: handler.NewProductHandler(catalogSvc),
		List:    handler.NewListHandler(catalogSvc, logoSvc, cfg.UploadMaxBytes),
	}

	// 7. Middleware
	jwtMw := middleware.NewJWTMiddleware(tokens)
	throttle := middleware.NewLoginThrottle()
	go throttle.Run(5*time.Minute, ctx.Done())

	// 8. Router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.LoggingMiddleware())
	router.Use(metrics.Middleware())
	if local, ok := disk.(*storage.LocalDisk); ok {
		router.Static(cfg.Storage.PublicPath, local.Root())
	}
	handler.SetupRoutes(router, handlers, jwtMw, throttle)

	// 9. HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
	return nil
}
