package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/hoshigumi/cast-console-api/internal/handler"
	"github.com/hoshigumi/cast-console-api/internal/middleware"
	"github.com/hoshigumi/cast-console-api/internal/repository"
	"github.com/hoshigumi/cast-console-api/internal/service"
	"github.com/hoshigumi/cast-console-api/pkg/cache"
	"github.com/hoshigumi/cast-console-api/pkg/config"
	"github.com/hoshigumi/cast-console-api/pkg/database"
	"github.com/hoshigumi/cast-console-api/pkg/logger"
	corsmiddleware "github.com/hoshigumi/cast-console-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hoshigumi/cast-console-api/pkg/middleware/requestid"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connect failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	castRepo := repository.NewCastRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	careRepo := repository.NewCareRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled && redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, cfg.JWT)
	analysisSvc := service.NewCastAnalysisService(castRepo, attendanceRepo, transactionRepo, careRepo, cacheSvc, metricsSvc, validate, logr, cfg.Analytics)
	attendanceSvc := service.NewAttendanceService(castRepo, attendanceRepo, cacheSvc, logr, cfg.Shop)
	exportSvc := service.NewExportService(nil, nil, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	analysisHandler := handler.NewCastAnalysisHandler(analysisSvc, exportSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.GET("/auth/me", authHandler.Me)
	protected.GET("/casts", analysisHandler.Roster)
	protected.GET("/casts/:id/analysis", analysisHandler.Analysis)
	protected.GET("/casts/:id/analysis/export", analysisHandler.Export)
	protected.GET("/casts/:id/attendance", attendanceHandler.Grid)
	protected.POST("/casts/:id/meetings", analysisHandler.AddMeeting)
	protected.POST("/casts/:id/notes", analysisHandler.AddCaseNote)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
