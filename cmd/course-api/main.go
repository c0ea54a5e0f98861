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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/campus-course-api/api/swagger"
	"github.com/noah-isme/campus-course-api/internal/handler"
	"github.com/noah-isme/campus-course-api/internal/middleware"
	"github.com/noah-isme/campus-course-api/internal/models"
	"github.com/noah-isme/campus-course-api/internal/repository"
	"github.com/noah-isme/campus-course-api/internal/service"
	"github.com/noah-isme/campus-course-api/pkg/cache"
	"github.com/noah-isme/campus-course-api/pkg/config"
	"github.com/noah-isme/campus-course-api/pkg/database"
	"github.com/noah-isme/campus-course-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-course-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-course-api/pkg/middleware/requestid"
	"github.com/noah-isme/campus-course-api/pkg/storage"
)

// @title Campus Course API
// @version 1.0.0
// @description Course domain service: announcements, merit points, mentoring groups and course materials
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	// The journal degrades to a no-op without redis; in-process retries
	// still run, only crash recovery is lost.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, cleanup journal disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	blobStore, err := storage.NewLocalStorage(cfg.Storage.BaseDir, cfg.Env)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare blob storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	pointRepo := repository.NewPointRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	cleanupRepo := repository.NewCleanupRepository(redisClient)

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanupSvc := service.NewCleanupService(cleanupRepo, blobStore, metricsSvc, logr, service.CleanupConfig{
		Workers:    cfg.Cleanup.Workers,
		MaxRetries: cfg.Cleanup.MaxRetries,
		RetryDelay: cfg.Cleanup.RetryDelay,
	})
	cleanupSvc.Start(ctx)
	defer cleanupSvc.Stop()
	if err := cleanupSvc.Sweep(ctx); err != nil {
		logr.Sugar().Warnw("cleanup sweep failed", "error", err)
	}

	announcementSvc := service.NewAnnouncementService(announcementRepo, logr)
	pointsSvc := service.NewPointsService(pointRepo, userRepo, validate, logr)
	groupSvc := service.NewGroupService(groupRepo, userRepo, validate, logr)
	materialSvc := service.NewMaterialService(materialRepo, blobStore, signer, cleanupSvc, metricsSvc, logr, service.MaterialServiceConfig{
		MaxFileSize: cfg.Uploads.MaxFileSizeBytes,
		APIPrefix:   cfg.APIPrefix,
	})
	exportSvc := service.NewExportService(groupRepo, pointRepo, userRepo, logr, nil, nil)

	announcementHandler := handler.NewAnnouncementHandler(announcementSvc)
	pointHandler := handler.NewPointHandler(pointsSvc)
	groupHandler := handler.NewGroupHandler(groupSvc, exportSvc)
	materialHandler := handler.NewMaterialHandler(materialSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, middleware.JWT(cfg.JWT.Secret))
	{
		api.POST("/announcements", announcementHandler.Create)
		api.GET("/announcements", announcementHandler.List)
		api.GET("/announcements/:id", announcementHandler.Get)
		api.PATCH("/announcements/:id", announcementHandler.Update)
		api.DELETE("/announcements/:id", announcementHandler.Delete)

		api.POST("/points", pointHandler.Grant)
		api.DELETE("/points/:id", pointHandler.Revoke)
		api.GET("/students/:studentId/points", pointHandler.StudentPoints)

		api.POST("/groups", groupHandler.Assign)
		api.GET("/groups/:leaderId/students", groupHandler.Students)
		api.GET("/students/:studentId/leader", groupHandler.Leader)
		api.GET("/groups/:leaderId/roster/export",
			middleware.RequireRoles(models.RoleStaff, models.RoleAdmin),
			groupHandler.ExportRoster)

		api.GET("/materials", materialHandler.Roots)
		api.POST("/materials/folders", materialHandler.CreateFolder)
		api.POST("/materials/files", materialHandler.UploadFile)
		api.GET("/materials/:id", materialHandler.Get)
		api.GET("/materials/:id/children", materialHandler.Children)
		api.DELETE("/materials/:id", materialHandler.Delete)
		api.GET("/materials/:id/download-url", materialHandler.DownloadURL)
		api.GET("/materials/:id/download", materialHandler.Download)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
