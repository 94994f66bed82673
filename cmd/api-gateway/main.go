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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gratitude-api/api/swagger"
	"github.com/noah-isme/gratitude-api/internal/handler"
	internalmiddleware "github.com/noah-isme/gratitude-api/internal/middleware"
	"github.com/noah-isme/gratitude-api/internal/repository"
	"github.com/noah-isme/gratitude-api/internal/service"
	"github.com/noah-isme/gratitude-api/pkg/cache"
	"github.com/noah-isme/gratitude-api/pkg/config"
	"github.com/noah-isme/gratitude-api/pkg/database"
	"github.com/noah-isme/gratitude-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gratitude-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gratitude-api/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// @title Gratitude API
// @version 1.0.0
// @description Thank-you letters and password protected surveys
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := database.NewManager(cfg.Mongo, database.WithLogger(logr))
	metrics := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, listing cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}
	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, true)
	}

	validate := service.NewValidator()
	letterRepo := repository.NewLetterRepository(store, cfg.Mongo.LettersCollection)
	surveyRepo := repository.NewSurveyRepository(store, cfg.Mongo.SurveysCollection)
	responseRepo := repository.NewSurveyResponseRepository(store, cfg.Mongo.ResponsesCollection)

	guard := service.NewPasswordGuard(surveyRepo, cfg.Surveys.BcryptCost, metrics, logr)
	letterSvc := service.NewLetterService(letterRepo, cacheSvc, metrics, validate, logr)
	surveySvc := service.NewSurveyService(surveyRepo, responseRepo, guard, cacheSvc, metrics, validate, logr)

	var limiter *internalmiddleware.IPRateLimiter
	if cfg.RateLimit.Enabled {
		limiter = internalmiddleware.NewIPRateLimiterFromConfig(cfg.RateLimit)
		go limiter.Run(ctx)
	}

	handlers := handler.Handlers{
		Letters: handler.NewLetterHandler(letterSvc),
		Surveys: handler.NewSurveyHandler(surveySvc),
		Metrics: handler.NewMetricsHandler(metrics, store),
		Limiter: limiter,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	handler.RegisterObservability(r, handlers.Metrics)
	handler.Register(r, handlers)
	if cfg.APIPrefix != "" && cfg.APIPrefix != "/" {
		handler.Register(r.Group(cfg.APIPrefix), handlers)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "mongo_policy", store.Policy())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown", zap.Error(err))
	}
	if err := store.Close(shutdownCtx); err != nil {
		logr.Warn("document store close", zap.Error(err))
	}
}
