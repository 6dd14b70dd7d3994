package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/cholo-abroad/crm-api/api/swagger"
	"github.com/cholo-abroad/crm-api/internal/handler"
	"github.com/cholo-abroad/crm-api/internal/middleware"
	"github.com/cholo-abroad/crm-api/internal/models"
	"github.com/cholo-abroad/crm-api/internal/repository"
	"github.com/cholo-abroad/crm-api/internal/service"
	"github.com/cholo-abroad/crm-api/pkg/cache"
	"github.com/cholo-abroad/crm-api/pkg/config"
	"github.com/cholo-abroad/crm-api/pkg/database"
	"github.com/cholo-abroad/crm-api/pkg/logger"
	corsmiddleware "github.com/cholo-abroad/crm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/cholo-abroad/crm-api/pkg/middleware/requestid"
	"github.com/cholo-abroad/crm-api/pkg/storage"
)

// @title Cholo Abroad CRM API
// @version 1.0.0
// @description CRM backend for an overseas education consultancy
// @BasePath /api/v1
// @schemes http https

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

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Dashboard.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	userRepo := repository.NewUserRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	conversionRepo := repository.NewConversionRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		ResetTokenTTL:      cfg.JWT.ResetTokenTTL,
		Issuer:             "crm-api",
	})
	leadSvc := service.NewLeadService(leadRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, applicationRepo, transactionRepo, noteRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(studentRepo, leadRepo, conversionRepo, validate, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, validate, logr, models.Branding{
		Name:    cfg.Branding.Name,
		LogoURL: cfg.Branding.LogoURL,
	})
	dashboardSvc := service.NewDashboardService(dashboardRepo, cacheSvc, metricsSvc, cfg.Dashboard.CacheTTL, logr)

	exportStore, err := storage.NewArchiveStore(cfg.Exports.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare exports directory", "error", err)
	}
	exportSigner := storage.NewShareSigner(cfg.JWT.Secret, cfg.Exports.ShareTTL)
	exportSvc := service.NewExportService(studentSvc, settingsSvc, exportStore, exportSigner, logr)
	exportSvc.Start(context.Background())
	defer exportSvc.Stop()
	exportSvc.CleanupArchives(cfg.Exports.Retain)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Leads:      handler.NewLeadHandler(leadSvc, dashboardSvc),
		Enrollment: handler.NewEnrollmentHandler(enrollmentSvc, dashboardSvc),
		Students:   handler.NewStudentHandler(studentSvc, exportSvc, dashboardSvc),
		Settings:   handler.NewSettingsHandler(settingsSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
	}, authSvc, userRepo)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
