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

	_ "github.com/campusdesk/complaint-api/api/swagger"
	"github.com/campusdesk/complaint-api/internal/handler"
	"github.com/campusdesk/complaint-api/internal/middleware"
	"github.com/campusdesk/complaint-api/internal/models"
	"github.com/campusdesk/complaint-api/internal/repository"
	"github.com/campusdesk/complaint-api/internal/service"
	"github.com/campusdesk/complaint-api/pkg/cache"
	"github.com/campusdesk/complaint-api/pkg/config"
	"github.com/campusdesk/complaint-api/pkg/database"
	"github.com/campusdesk/complaint-api/pkg/logger"
	corsmiddleware "github.com/campusdesk/complaint-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusdesk/complaint-api/pkg/middleware/requestid"
	"github.com/campusdesk/complaint-api/pkg/storage"
)

// @title Complaint Desk API
// @version 1.0.0
// @description Institutional complaint tracking: student submissions, staff triage and admin management
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	attachmentStore, err := storage.NewLocalStorage(cfg.Attachments.StorageDir)
	if err != nil {
		logr.Fatal("failed to init attachment storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Attachments.SignedURLSecret, cfg.Attachments.SignedURLTTL)

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if cfg.Statistics.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, statistics cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Statistics.CacheTTL, logr, true)
		}
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	complaintRepo := repository.NewComplaintRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db).WithQueryObserver(metricsService)
	settingRepo := repository.NewSettingRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	complaintService := service.NewComplaintService(complaintRepo, attachmentStore, signer, validate, logr).WithCache(cacheService)
	assignmentService := service.NewAssignmentService(complaintRepo, userRepo, logr).WithCache(cacheService)
	userService := service.NewUserService(userRepo, validate, logr)
	statisticsService := service.NewStatisticsService(statisticsRepo, cacheService, cfg.Statistics.CacheTTL, logr)
	settingsService := service.NewSettingsService(settingRepo, userRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authService)
	complaintHandler := handler.NewComplaintHandler(complaintService, cfg.Attachments.MaxFileSizeBytes)
	staffHandler := handler.NewStaffHandler(complaintService, statisticsService)
	adminHandler := handler.NewAdminHandler(complaintService, assignmentService, userService, statisticsService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsService))

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

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.JWT(authService), authHandler.Me)
	}

	api.GET("/attachments/:token",
		middleware.OptionalJWT(authService),
		middleware.Audit(userRepo, "ATTACHMENT_DOWNLOAD", "attachment"),
		complaintHandler.DownloadAttachment)

	student := api.Group("/complaints", middleware.JWT(authService), middleware.RequireRoles(models.RoleStudent))
	{
		student.POST("", complaintHandler.Create)
		student.GET("/unsolved", complaintHandler.ListUnsolved)
		student.GET("/solved", complaintHandler.ListSolved)
		student.GET("/:id", complaintHandler.Get)
	}

	staff := api.Group("/staff", middleware.JWT(authService), middleware.RequireRoles(models.RoleStaff, models.RoleAdmin))
	{
		staff.GET("/complaints", staffHandler.ListComplaints)
		staff.GET("/complaints/solved", staffHandler.ListSolved)
		staff.GET("/complaints/:id", staffHandler.Get)
		staff.PATCH("/complaints/:id/status", staffHandler.UpdateStatus)
		staff.GET("/overview", staffHandler.Overview)
	}

	admin := api.Group("/admin", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/dashboard", adminHandler.Dashboard)

		admin.GET("/complaints", adminHandler.ListComplaints)
		admin.GET("/complaints/:id", adminHandler.GetComplaint)
		admin.PATCH("/complaints/:id/status", adminHandler.UpdateComplaintStatus)
		admin.PATCH("/complaints/:id/assign", adminHandler.AssignComplaint)
		admin.POST("/complaints/:id/comments", adminHandler.AddComment)
		admin.DELETE("/complaints/:id", adminHandler.DeleteComplaint)

		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/users/:id", adminHandler.GetUser)
		admin.PATCH("/users/:id/approval", adminHandler.SetApproval)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
		admin.GET("/authorized-staff", adminHandler.AuthorizedStaff)

		admin.GET("/statistics", statisticsHandler.Summary)
		admin.GET("/statistics/longest-open", statisticsHandler.LongestOpen)
		admin.GET("/statistics/recently-closed", statisticsHandler.RecentlyClosed)
		admin.GET("/statistics/staff-assignment", statisticsHandler.StaffLoad)
		admin.GET("/statistics/export", statisticsHandler.Export)

		admin.GET("/settings", settingsHandler.List)
		admin.PUT("/settings", settingsHandler.Update)

		admin.GET("/system/metrics", metricsHandler.Snapshot)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
