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

	_ "github.com/campus-vault/campusvault-api/api/swagger"
	"github.com/campus-vault/campusvault-api/internal/handler"
	"github.com/campus-vault/campusvault-api/internal/middleware"
	"github.com/campus-vault/campusvault-api/internal/models"
	"github.com/campus-vault/campusvault-api/internal/repository"
	"github.com/campus-vault/campusvault-api/internal/service"
	"github.com/campus-vault/campusvault-api/pkg/cache"
	"github.com/campus-vault/campusvault-api/pkg/config"
	"github.com/campus-vault/campusvault-api/pkg/database"
	"github.com/campus-vault/campusvault-api/pkg/logger"
	corsmiddleware "github.com/campus-vault/campusvault-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-vault/campusvault-api/pkg/middleware/requestid"
	"github.com/campus-vault/campusvault-api/pkg/storage"
)

// @title CampusVault API
// @version 1.0.0
// @description College-scoped academic resource sharing backend
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, stats caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	blobs, err := storage.New(cfg.Storage)
	if err != nil {
		logr.Sugar().Fatalw("failed to init blob storage", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	pyqRepo := repository.NewPYQRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	announceRepo := repository.NewAnnouncementRepository(db)
	thoughtRepo := repository.NewThoughtRepository(db)
	requestRepo := repository.NewRequestRepository(db)

	metricsSvc := service.NewMetricsService()
	for _, repo := range []interface{ SetObserver(repository.QueryObserver) }{
		userRepo, noteRepo, pyqRepo, timetableRepo, announceRepo, thoughtRepo, requestRepo,
	} {
		repo.SetObserver(metricsSvc)
	}

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.Enabled)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Stats.CacheTTL, logr, false)
	}

	policy := service.NewAccessPolicy()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "campusvault-api",
		Audience:           []string{"campusvault-api"},
	})

	catalogSvc := service.NewCatalogService(noteRepo, pyqRepo, timetableRepo, blobs, policy, userRepo, validate, logr, service.CatalogServiceConfig{
		MaxFileSize:     cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:    cfg.Uploads.AllowedMIMEs,
		PYQAllowedMIMEs: cfg.Uploads.PYQAllowedMIMEs,
	}).WithUploadObserver(metricsSvc)

	announceSvc := service.NewAnnouncementService(announceRepo, policy, userRepo, validate, logr)
	thoughtSvc := service.NewThoughtService(thoughtRepo, policy, userRepo, validate, logr, service.ThoughtServiceConfig{
		TTL:           cfg.Thoughts.TTL,
		MaxContentLen: cfg.Thoughts.MaxContentLen,
	})
	requestSvc := service.NewRequestService(requestRepo, policy, userRepo, validate, logr)
	statsSvc := service.NewStatsService(noteRepo, pyqRepo, timetableRepo, announceRepo, thoughtRepo, cacheSvc, logr, service.StatsServiceConfig{
		CacheTTL: cfg.Stats.CacheTTL,
	})
	exportSvc := service.NewExportService(noteRepo, pyqRepo, timetableRepo, policy, logr, nil, nil)

	catalogSvc.WithStatsInvalidator(statsSvc)
	announceSvc.WithStatsInvalidator(statsSvc)
	thoughtSvc.WithStatsInvalidator(statsSvc)

	authHandler := handler.NewAuthHandler(authSvc)
	noteHandler := handler.NewNoteHandler(catalogSvc)
	pyqHandler := handler.NewPYQHandler(catalogSvc)
	timetableHandler := handler.NewTimetableHandler(catalogSvc)
	announceHandler := handler.NewAnnouncementHandler(announceSvc)
	thoughtHandler := handler.NewThoughtHandler(thoughtSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	statsHandler := handler.NewStatsHandler(statsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if cfg.Storage.Type == "local" || cfg.Storage.Type == "" {
		r.Static("/uploads", cfg.Storage.LocalDir)
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		session := auth.Group("", middleware.JWT(authSvc))
		session.POST("/logout", authHandler.Logout)
		session.POST("/change-password", authHandler.ChangePassword)
		session.GET("/me", authHandler.Me)
	}

	// Active announcements are public; anonymous callers read platform-wide.
	announcementReads := api.Group("/announcements", middleware.OptionalJWT(authSvc))
	announcementReads.GET("", announceHandler.List)
	announcementReads.GET("/:id", announceHandler.Get)

	protected := api.Group("", middleware.JWT(authSvc))
	{
		notes := protected.Group("/notes")
		notes.GET("", noteHandler.List)
		notes.POST("", noteHandler.Create)
		notes.GET("/:id", noteHandler.Get)
		notes.DELETE("/:id", noteHandler.Delete)

		pyqs := protected.Group("/pyqs")
		pyqs.GET("", pyqHandler.List)
		pyqs.POST("", pyqHandler.Create)
		pyqs.GET("/:id", pyqHandler.Get)
		pyqs.DELETE("/:id", pyqHandler.Delete)

		timetables := protected.Group("/timetables")
		timetables.GET("", timetableHandler.List)
		timetables.POST("", middleware.RBAC(string(models.RoleFaculty), string(models.RoleAdmin)), timetableHandler.Create)
		timetables.GET("/:id", timetableHandler.Get)
		timetables.DELETE("/:id", timetableHandler.Delete)

		announcements := protected.Group("/announcements")
		announcements.POST("", middleware.RBAC(string(models.RoleFaculty), string(models.RoleAdmin)), announceHandler.Create)
		announcements.PATCH("/:id/status", middleware.RBAC(string(models.RoleFaculty), string(models.RoleAdmin)), announceHandler.SetStatus)
		announcements.DELETE("/:id", announceHandler.Delete)

		thoughts := protected.Group("/thoughts")
		thoughts.GET("", thoughtHandler.List)
		thoughts.POST("", thoughtHandler.Create)
		thoughts.DELETE("/:id", thoughtHandler.Delete)

		requests := protected.Group("/requests")
		requests.GET("", requestHandler.List)
		requests.POST("", requestHandler.Create)
		requests.GET("/:id", requestHandler.Get)
		requests.PATCH("/:id/status", middleware.RBAC(string(models.RoleFaculty), string(models.RoleAdmin)), requestHandler.UpdateStatus)
		requests.DELETE("/:id", requestHandler.Delete)

		protected.GET("/stats/college", statsHandler.College)
		protected.GET("/stats/system", middleware.RBAC(string(models.RoleAdmin)), metricsHandler.System)

		if cfg.Exports.Enabled {
			protected.GET("/exports/:kind",
				middleware.RBAC(string(models.RoleFaculty), string(models.RoleAdmin)),
				middleware.Audit(userRepo, models.AuditActionExportDownload, "exports"),
				exportHandler.Catalog)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
		return
	}
	logr.Sugar().Infow("server stopped")
}
