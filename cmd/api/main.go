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

	_ "github.com/cursohub/cursohub-api/api/swagger"
	"github.com/cursohub/cursohub-api/internal/events"
	"github.com/cursohub/cursohub-api/internal/handler"
	"github.com/cursohub/cursohub-api/internal/middleware"
	"github.com/cursohub/cursohub-api/internal/models"
	"github.com/cursohub/cursohub-api/internal/repository"
	"github.com/cursohub/cursohub-api/internal/service"
	"github.com/cursohub/cursohub-api/pkg/cache"
	"github.com/cursohub/cursohub-api/pkg/config"
	"github.com/cursohub/cursohub-api/pkg/database"
	"github.com/cursohub/cursohub-api/pkg/email"
	"github.com/cursohub/cursohub-api/pkg/export"
	"github.com/cursohub/cursohub-api/pkg/logger"
	corsmiddleware "github.com/cursohub/cursohub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/cursohub/cursohub-api/pkg/middleware/requestid"
	"github.com/cursohub/cursohub-api/pkg/storage"
)

// @title CursoHub API
// @version 1.0.0
// @description Course marketplace backend: accounts, catalog, enrollments and admin review
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

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The dashboard cache degrades to direct queries without redis.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	store, err := storage.NewLocalStorage(cfg.Certificates.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare certificate storage", "error", err)
	}

	accountRepo := repository.NewAccountRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	statsRepo := repository.NewStatsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, redisClient != nil)

	hub := events.NewHub(logr)
	defer hub.Shutdown()

	var sender email.Sender
	if cfg.Email.Enabled && cfg.Email.APIKey != "" {
		sender = email.NewResendSender(cfg.Email.APIKey, cfg.Email.FromEmail, cfg.Email.AppURL)
	} else {
		sender = email.NewLogSender(logr)
	}

	authSvc := service.NewAuthService(accountRepo, sender, hub, validate, logr, service.AuthConfig{
		AccessTokenSecret:   cfg.JWT.Secret,
		AccessTokenExpiry:   cfg.JWT.Expiration,
		RefreshTokenExpiry:  cfg.JWT.RefreshExpiration,
		Issuer:              "cursohub-api",
		RequireConfirmation: cfg.Registration.RequireConfirmation,
		VerificationTTL:     cfg.Registration.VerificationTTL,
	})
	authzSvc := service.NewAuthzService(profileRepo, logr)
	profileSvc := service.NewProfileService(profileRepo, accountRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	applicationSvc := service.NewApplicationService(applicationRepo, profileRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(statsRepo, cacheSvc, cfg.Stats.CacheTTL, logr)

	certificateSvc := service.NewCertificateService(service.CertificateServiceParams{
		Enrollments: enrollmentRepo,
		Courses:     courseRepo,
		Accounts:    accountRepo,
		Renderer:    export.NewCertificateRenderer(""),
		Store:       store,
		Signer:      storage.NewSignedURLSigner(cfg.Certificates.SignedURLSecret, cfg.Certificates.SignedURLTTL),
		Logger:      logr,
		Workers:     cfg.Certificates.WorkerConcurrency,
		MaxRetries:  cfg.Certificates.WorkerRetries,
	})
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, certificateSvc, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	certificateSvc.Start(ctx)
	defer certificateSvc.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	profileHandler := handler.NewProfileHandler(profileSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, certificateSvc)
	certificateHandler := handler.NewCertificateHandler(certificateSvc)
	applicationHandler := handler.NewApplicationHandler(applicationSvc)
	adminHandler := handler.NewAdminHandler(dashboardSvc, profileSvc, courseSvc, applicationSvc)
	eventsHandler := handler.NewEventsHandler(hub)
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
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/verify-email", authHandler.VerifyEmail)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	// Catalog routes are public; an optional token lets instructors and
	// admins see their own drafts.
	catalog := api.Group("", middleware.OptionalJWT(authSvc), middleware.ResolveRoles(authzSvc))
	catalog.GET("/courses", courseHandler.List)
	catalog.GET("/courses/:id", courseHandler.Get)
	catalog.GET("/categories", courseHandler.Categories)

	api.GET("/certificates/download", certificateHandler.Download)

	authed := api.Group("", middleware.JWT(authSvc), middleware.ResolveRoles(authzSvc))
	authed.GET("/profile", profileHandler.GetOwn)
	authed.PUT("/profile", profileHandler.UpdateOwn)
	authed.POST("/enrollments", enrollmentHandler.Enroll)
	authed.GET("/enrollments", enrollmentHandler.ListOwn)
	authed.PATCH("/enrollments/:id/progress", enrollmentHandler.UpdateProgress)
	authed.GET("/enrollments/:id/certificate", enrollmentHandler.Certificate)
	authed.POST("/instructor-applications", applicationHandler.Apply)

	instructor := authed.Group("/instructor", middleware.RequireInstructor())
	instructor.GET("/courses", courseHandler.ListOwn)
	instructor.POST("/courses", courseHandler.Create)
	instructor.PUT("/courses/:id", courseHandler.Update)

	admin := authed.Group("/admin", middleware.RequireAdmin())
	admin.GET("/stats", adminHandler.Stats)
	admin.GET("/metrics", metricsHandler.System)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/role",
		middleware.Audit(accountRepo, models.AuditActionRoleChange, "users"), adminHandler.SetRole)
	admin.GET("/courses/review", adminHandler.ReviewQueue)
	admin.PUT("/courses/:id/publication",
		middleware.Audit(accountRepo, models.AuditActionCoursePublication, "courses"), adminHandler.SetPublication)
	admin.GET("/applications", adminHandler.ListApplications)
	admin.POST("/applications/:id/review",
		middleware.Audit(accountRepo, models.AuditActionApplicationReview, "applications"), adminHandler.ReviewApplication)
	admin.GET("/events", eventsHandler.Feed)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
