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

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/roomsched-api/api/swagger"
	"github.com/noah-isme/roomsched-api/internal/handler"
	"github.com/noah-isme/roomsched-api/internal/repository"
	"github.com/noah-isme/roomsched-api/internal/router"
	"github.com/noah-isme/roomsched-api/internal/service"
	"github.com/noah-isme/roomsched-api/pkg/cache"
	"github.com/noah-isme/roomsched-api/pkg/config"
	"github.com/noah-isme/roomsched-api/pkg/database"
	"github.com/noah-isme/roomsched-api/pkg/jobs"
	"github.com/noah-isme/roomsched-api/pkg/logger"
	"github.com/noah-isme/roomsched-api/pkg/storage"
)

// @title Room Scheduling API
// @version 1.0.0
// @description Classroom booking, availability search and room change workflow.
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	var cacheRepo service.CacheRepository
	if cfg.Availability.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, availability cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	requestRepo := repository.NewChangeRequestRepository(db)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Availability.CacheTTL, logr, cfg.Availability.CacheEnabled)
	availabilitySvc := service.NewAvailabilityService(roomRepo, bookingRepo, cacheSvc, cfg.Availability.CacheTTL, metrics, validate, logr)
	guard := service.NewBookingGuard(roomRepo, enrollmentRepo, bookingRepo, requestRepo, cfg.Schedule.Location(), metrics, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "roomsched-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, bookingRepo, availabilitySvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, userRepo, validate, logr)
	bookingSvc := service.NewBookingService(bookingRepo, enrollmentRepo, guard, availabilitySvc, userRepo, logr)
	requestSvc := service.NewChangeRequestService(requestRepo, bookingRepo, enrollmentRepo, guard, availabilitySvc, userRepo, validate, logr)

	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		User:          handler.NewUserHandler(userSvc),
		Room:          handler.NewRoomHandler(roomSvc, availabilitySvc),
		Course:        handler.NewCourseHandler(courseSvc),
		Enrollment:    handler.NewEnrollmentHandler(enrollmentSvc),
		Booking:       handler.NewBookingHandler(bookingSvc),
		ChangeRequest: handler.NewChangeRequestHandler(requestSvc),
		Metrics:       handler.NewMetricsHandler(metrics, readinessChecks(db, redisClient), logr),
	}

	if cfg.Reports.Enabled {
		queue, reportSvc, err := buildReports(ctx, cfg, db, roomRepo, bookingRepo, metrics, validate, logr)
		if err != nil {
			logr.Fatal("failed to init reports", zap.Error(err))
		}
		defer queue.Stop()
		handlers.Report = handler.NewReportHandler(reportSvc)
	}

	engine := router.New(router.Dependencies{
		Config:   cfg,
		Logger:   logr,
		Metrics:  metrics,
		Tokens:   authSvc,
		Audit:    userRepo,
		Handlers: handlers,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

// buildReports wires the export pipeline and starts its worker pool and cleanup loop.
func buildReports(ctx context.Context, cfg *config.Config, db *sqlx.DB, rooms *repository.RoomRepository, bookings *repository.BookingRepository, metrics *service.MetricsService, validate *validator.Validate, logr *zap.Logger) (*jobs.Queue, *service.ReportService, error) {
	files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exporter := service.NewExportService(rooms, bookings, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr)

	reportRepo := repository.NewReportRepository(db)
	worker := service.NewReportWorker(reportRepo, exporter, metrics, cfg.Reports.WorkerRetries, logr)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
		OnGiveUp: func(job jobs.Job, err error) {
			logr.Error("report job abandoned", zap.String("job_id", job.ID), zap.Int("attempts", job.Attempt), zap.Error(err))
		},
	})
	queue.Start(ctx)

	reportSvc := service.NewReportService(reportRepo, queue, exporter, validate, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	reportSvc.RecoverPendingJobs(ctx)
	reportSvc.StartCleanup(ctx)
	return queue, reportSvc, nil
}

func readinessChecks(db *sqlx.DB, redisClient *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}
