package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/adobah666/edutrack-sub001/api/swagger"
	"github.com/adobah666/edutrack-sub001/internal/handler"
	"github.com/adobah666/edutrack-sub001/internal/middleware"
	"github.com/adobah666/edutrack-sub001/internal/repository"
	"github.com/adobah666/edutrack-sub001/internal/service"
	"github.com/adobah666/edutrack-sub001/pkg/cache"
	"github.com/adobah666/edutrack-sub001/pkg/config"
	"github.com/adobah666/edutrack-sub001/pkg/database"
	"github.com/adobah666/edutrack-sub001/pkg/logger"
	corsmiddleware "github.com/adobah666/edutrack-sub001/pkg/middleware/cors"
	reqidmiddleware "github.com/adobah666/edutrack-sub001/pkg/middleware/requestid"
)

// @title EduTrack Term Engine API
// @version 1.0.0
// @description Term evaluation, result approval and class progression.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(context.Background(), cfg.Database, logr)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	var redisClient *redis.Client
	if cfg.Reports.CacheEnabled {
		redisClient, err = cache.NewRedis(context.Background(), cfg.Redis, logr)
		if err != nil {
			logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	subjects := repository.NewSubjectRepository(db)
	overrides := repository.NewTermWeightRepository(db)
	schemes := repository.NewGradingSchemeRepository(db)
	items := repository.NewGradedItemRepository(db)
	approvals := repository.NewApprovalRepository(db)
	classes := repository.NewClassRepository(db)
	students := repository.NewStudentRepository(db)
	audits := repository.NewAuditRepository(db)
	history := repository.NewClassHistoryRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, "edutrack", logger.Component(logr, "cache"))
	defer cacheRepo.Close() //nolint:errcheck

	access := service.NewAccessService(repository.NewAccessRepository(db), logger.Component(logr, "access"))
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logger.Component(logr, "cache"), cfg.Reports.CacheEnabled && redisClient != nil)
	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer})

	weightSvc := service.NewWeightService(subjects, overrides, access, audits, cacheSvc, validate, logger.Component(logr, "weights"), cfg.Grading.WeightSumTolerance)
	scaleSvc := service.NewScaleService(schemes, logger.Component(logr, "scales"))
	approvalSvc := service.NewApprovalService(approvals, classes, access, audits, cacheSvc, validate, logger.Component(logr, "approvals"))
	reportSvc := service.NewReportService(students, classes, subjects, items, weightSvc, scaleSvc, approvalSvc, access, cacheSvc, metrics, logger.Component(logr, "reports"), service.ReportServiceConfig{
		MaxConcurrency: cfg.Reports.MaxConcurrency,
		CacheTTL:       cfg.Reports.CacheTTL,
	})
	exportSvc := service.NewExportService(reportSvc, logger.Component(logr, "exports"), nil, nil)
	historySvc := service.NewClassHistoryService(history, students, access, audits, metrics, logger.Component(logr, "class_history"), service.ClassHistoryConfig{
		RepairOnRead: cfg.Ledger.RepairOnRead,
	})
	promotionSvc := service.NewPromotionService(history, students, classes, access, audits, cacheSvc, metrics, validate, logger.Component(logr, "promotions"), service.PromotionConfig{
		FallbackEnabled: cfg.Promotion.FallbackEnabled,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	registerRoutes(r, cfg, routeDeps{
		tokens:     tokens,
		audits:     audits,
		logger:     logr,
		metrics:    handler.NewMetricsHandler(metrics, db),
		reports:    handler.NewReportHandler(reportSvc, exportSvc),
		weights:    handler.NewWeightHandler(weightSvc),
		approvals:  handler.NewApprovalHandler(approvalSvc),
		promotions: handler.NewPromotionHandler(promotionSvc),
		history:    handler.NewClassHistoryHandler(historySvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
