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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/Kunj2411/Lokmanya-ATS/api/swagger"
	"github.com/Kunj2411/Lokmanya-ATS/internal/handler"
	"github.com/Kunj2411/Lokmanya-ATS/internal/middleware"
	"github.com/Kunj2411/Lokmanya-ATS/internal/repository"
	"github.com/Kunj2411/Lokmanya-ATS/internal/service"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/cache"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/config"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/database"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/jobs"
	"github.com/Kunj2411/Lokmanya-ATS/pkg/logger"
	corsmiddleware "github.com/Kunj2411/Lokmanya-ATS/pkg/middleware/cors"
	reqidmiddleware "github.com/Kunj2411/Lokmanya-ATS/pkg/middleware/requestid"
)

// @title Lokmanya ATS API
// @version 1.0.0
// @description Attendance capture and reporting for admin and faculty users
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
		redisClient = nil
	}

	metrics := service.NewMetricsService()
	validate := validator.New()

	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	userRepo := repository.NewUserRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr, cfg.Reports.CacheEnabled && cacheRepo.Enabled())
	catalog := service.NewSubjectCatalog(cfg.Attendance.Subjects)

	queue := jobs.NewQueue("reports", jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
		OnResult: func(job jobs.Job, err error) {
			metrics.RecordJob(job.Type, err)
		},
	})

	reportSvc := service.NewReportService(attendanceRepo, cacheSvc, queue, metrics, validate, logr, service.ReportServiceConfig{
		DateLabelLayout: cfg.Reports.DateLabelLayout,
		CacheTTL:        cfg.Reports.CacheTTL,
	})
	reportSvc.RegisterJobs(queue)
	queue.Start(ctx)
	defer queue.Stop()

	attendanceSvc := service.NewAttendanceService(studentRepo, attendanceRepo, catalog, reportSvc, metrics, validate, logr, service.AttendanceServiceConfig{
		MaxLectures: cfg.Attendance.MaxLectures,
	})
	studentSvc := service.NewStudentService(studentRepo, reportSvc, validate, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
		"database": db,
		"cache":    handler.PingFunc(cacheRepo.Ping),
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	handler.Register(r.Group(cfg.APIPrefix), authSvc, handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Students:   handler.NewStudentHandler(studentSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc),
		Reports:    handler.NewReportHandler(reportSvc),
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
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
