package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/sikori-api/internal/config"
	"github.com/noah-isme/sikori-api/internal/database"
	"github.com/noah-isme/sikori-api/internal/handler"
	"github.com/noah-isme/sikori-api/internal/middleware"
	"github.com/noah-isme/sikori-api/internal/repository"
	"github.com/noah-isme/sikori-api/internal/router"
	"github.com/noah-isme/sikori-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, report caching disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var events service.EventPublisher = service.NewLogEventPublisher(logger)
	if cfg.NATSURL != "" {
		conn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, domain events are only logged")
		} else {
			defer conn.Drain()
			events = service.NewNATSEventPublisher(conn, cfg.EventSubjectPrefix)
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	gate := service.NewWriteGate()

	studentRepo := repository.NewStudentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	backupRepo := repository.NewBackupRepository(db)

	seedService := service.NewSeedService(userRepo, logger)
	if _, err := seedService.EnsureSuperAdmin(context.Background(), service.SuperAdminSeed{
		Username: cfg.AdminUsername,
		Password: cfg.AdminPassword,
		FullName: cfg.AdminFullName,
	}); err != nil {
		log.Fatalf("failed to seed super admin: %v", err)
	}

	auditService := service.NewAuditService(auditRepo, logger)
	reportService := service.NewReportService(studentRepo, activityRepo, assessmentRepo, redisClient, cfg.CacheTTL, logger)
	authService := service.NewAuthService(userRepo, gate, service.AuthConfig{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL}, validate, logger)
	userService := service.NewUserService(userRepo, gate, auditService, validate, logger)
	studentService := service.NewStudentService(studentRepo, gate, reportService, auditService, events, validate, logger)
	activityService := service.NewActivityService(activityRepo, gate, reportService, auditService, events, validate, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, studentRepo, activityRepo, gate, reportService, events, validate, logger)
	backupService, err := service.NewBackupService(backupRepo, gate, reportService, auditService, events, service.BackupConfig{PublicEnabled: cfg.PublicBackupEnabled}, logger)
	if err != nil {
		log.Fatalf("failed to initialise backup service: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    int(service.MaxBackupSize),
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.AllowOrigins,
		AccessLog:    cfg.AccessLog,
	})
	router.Register(app, cfg, router.Dependencies{
		DB:                db,
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		UserHandler:       handler.NewUserHandler(userService, logger),
		StudentHandler:    handler.NewStudentHandler(studentService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		AssessmentHandler: handler.NewAssessmentHandler(assessmentService, logger),
		ReportHandler:     handler.NewReportHandler(reportService, logger),
		AuditHandler:      handler.NewAuditHandler(auditService, logger),
		BackupHandler:     handler.NewBackupHandler(backupService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
