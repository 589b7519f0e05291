package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/dmurtari/mbu-online-sub002/api/swagger"
	"github.com/dmurtari/mbu-online-sub002/internal/handler"
	"github.com/dmurtari/mbu-online-sub002/internal/middleware"
	"github.com/dmurtari/mbu-online-sub002/internal/repository"
	"github.com/dmurtari/mbu-online-sub002/internal/service"
	"github.com/dmurtari/mbu-online-sub002/pkg/cache"
	"github.com/dmurtari/mbu-online-sub002/pkg/config"
	"github.com/dmurtari/mbu-online-sub002/pkg/database"
	"github.com/dmurtari/mbu-online-sub002/pkg/logger"
	reqidmiddleware "github.com/dmurtari/mbu-online-sub002/pkg/middleware/requestid"
)

// @title MBU Registration Engine
// @version 0.1.0
// @description Offerings, preferences, assignments, and costs for merit badge events
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	// A nil Cmdable keeps the cache repository permanently missing.
	var cacheClient redis.Cmdable
	if cfg.Cache.OccupancyEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("occupancy cache disabled", zap.Error(err))
		} else {
			defer client.Close()
			cacheClient = client
		}
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	offeringRepo := repository.NewOfferingRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	eventRepo := repository.NewEventRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	cacheSvc := service.NewCacheService(repository.NewCacheRepository(cacheClient), metricsSvc, cfg.Cache.OccupancyTTL, logr, cacheClient != nil)
	capacitySvc := service.NewCapacityService(offeringRepo, assignmentRepo, cacheSvc, metricsSvc, logr)
	bindingSvc := service.NewBindingService(db, registrationRepo, offeringRepo, assignmentRepo, preferenceRepo, capacitySvc, validate, metricsSvc, logr,
		service.BindingConfig{LockTimeout: cfg.Engine.LockTimeout})
	offeringSvc := service.NewOfferingService(db, offeringRepo, assignmentRepo, eventRepo, capacitySvc, validate, metricsSvc, logr,
		service.OfferingConfig{DefaultSizeLimit: cfg.Engine.DefaultSizeLimit, LockTimeout: cfg.Engine.LockTimeout})
	costSvc := service.NewCostService(db, registrationRepo, eventRepo, purchaseRepo, preferenceRepo, assignmentRepo, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))

	registerRoutes(r, cfg.APIPrefix, routeHandlers{
		metrics:      handler.NewMetricsHandler(metricsSvc, db),
		offerings:    handler.NewOfferingHandler(offeringSvc),
		registration: handler.NewRegistrationHandler(bindingSvc),
		costs:        handler.NewCostHandler(costSvc),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
