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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-records/api/swagger"
	"github.com/noah-isme/campus-records/internal/handler"
	internalmiddleware "github.com/noah-isme/campus-records/internal/middleware"
	"github.com/noah-isme/campus-records/internal/records"
	"github.com/noah-isme/campus-records/internal/repository"
	"github.com/noah-isme/campus-records/internal/service"
	"github.com/noah-isme/campus-records/pkg/config"
	"github.com/noah-isme/campus-records/pkg/delimited"
	"github.com/noah-isme/campus-records/pkg/export"
	"github.com/noah-isme/campus-records/pkg/jobs"
	"github.com/noah-isme/campus-records/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-records/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-records/pkg/middleware/requestid"
	"github.com/noah-isme/campus-records/pkg/storage"
	"github.com/noah-isme/campus-records/pkg/validation"
)

// @title Campus Records API
// @version 1.0.0
// @description Student, course and enrollment records with delimited file import and export
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	store := repository.NewStore()
	validator := validation.New()
	metricsSvc := service.NewMetricsService()

	studentRepo := repository.NewStudentRepository(store)
	courseRepo := repository.NewCourseRepository(store)
	instructorRepo := repository.NewInstructorRepository(store)
	enrollmentRepo := repository.NewEnrollmentRepository(store)

	studentSvc := service.NewStudentService(studentRepo, validator, logr)
	courseSvc := service.NewCourseService(courseRepo, instructorRepo, validator, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, validator, logr)
	enrollmentSvc := service.NewEnrollmentService(store, enrollmentRepo, cfg.Enrollment.MaxCreditsPerSemester, metricsSvc, validator, logr)
	transcriptSvc := service.NewTranscriptService(store, export.NewPDFExporter(), logr)

	codec := records.NewCodec(cfg.Records.TimestampLayout)
	importSvc := service.NewImportService(studentSvc, courseSvc, enrollmentSvc, studentRepo, codec, metricsSvc, service.ImportConfig{
		DataDir: cfg.Records.DataDir,
		Options: delimited.Options{
			Delimiter:     cfg.Records.Delimiter,
			HeaderLines:   cfg.Records.HeaderLines,
			CommentPrefix: cfg.Records.CommentPrefix,
			MaxLineBytes:  cfg.Records.MaxLineBytes,
		},
	}, logr)

	fileStorage, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		logr.Fatal("failed to prepare export directory", zap.String("dir", cfg.Exports.Dir), zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	csvExporter := export.NewCSVExporter(
		export.WithDelimiter(cfg.Records.Delimiter),
		export.WithBackslashEscaping(),
		export.WithCommentPrefix(cfg.Records.CommentPrefix),
	)
	exportSvc := service.NewExportService(store, codec, fileStorage, signer, csvExporter, metricsSvc, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.Retention,
	}, logr)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	exportJobRepo := repository.NewExportJobRepository()
	exportWorker := service.NewExportWorker(exportJobRepo, exportSvc, metricsSvc, cfg.Exports.WorkerRetries, logr)
	exportQueue := jobs.NewQueue("exports", exportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.Workers,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportQueue.Start(ctx)
	defer exportQueue.Stop()
	exportJobSvc := service.NewExportJobService(exportJobRepo, exportQueue, exportSvc, metricsSvc, service.ExportJobConfig{
		Retention:       cfg.Exports.Retention,
		CleanupInterval: cfg.Exports.CleanupInterval,
	}, logr)
	exportJobSvc.StartCleanup(ctx)

	if removed, err := exportSvc.Cleanup(0); err != nil {
		logr.Warn("export cleanup failed", zap.Error(err))
	} else if len(removed) > 0 {
		logr.Info("expired exports removed", zap.Int("count", len(removed)))
	}

	if cfg.Records.BootstrapImport {
		results, err := importSvc.Bootstrap(ctx)
		if err != nil {
			logr.Fatal("bootstrap import failed", zap.Error(err))
		}
		for _, result := range results {
			logr.Info("bootstrap import",
				zap.String("entity", string(result.Entity)),
				zap.Int("imported", result.Imported),
				zap.Int("skipped", result.Skipped))
		}
	}

	metricsHandler := handler.NewMetricsHandler(metricsSvc, func(ctx context.Context) error {
		return store.View(ctx, func(*repository.Tx) error { return nil })
	})
	handlers := handler.Handlers{
		Students:    handler.NewStudentHandler(studentSvc),
		Courses:     handler.NewCourseHandler(courseSvc),
		Instructors: handler.NewInstructorHandler(instructorSvc),
		Enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		Transcripts: handler.NewTranscriptHandler(transcriptSvc),
		Imports:     handler.NewImportHandler(importSvc),
		Exports:     handler.NewExportHandler(exportSvc),
		ExportJobs:  handler.NewExportJobHandler(exportJobSvc),
		Metrics:     metricsHandler,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}
	if cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	handlers.Register(r.Group(cfg.APIPrefix))

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
	sig := <-quit
	logr.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server shutdown failed", zap.Error(err))
	}
}
