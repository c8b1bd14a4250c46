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
	"github.com/rs/zerolog"

	"github.com/skillproof/skillproof-api/internal/config"
	"github.com/skillproof/skillproof-api/internal/database"
	"github.com/skillproof/skillproof-api/internal/handler"
	"github.com/skillproof/skillproof-api/internal/middleware"
	"github.com/skillproof/skillproof-api/internal/models"
	"github.com/skillproof/skillproof-api/internal/repository"
	"github.com/skillproof/skillproof-api/internal/router"
	"github.com/skillproof/skillproof-api/internal/service"
	"github.com/skillproof/skillproof-api/pkg/ai"
	"github.com/skillproof/skillproof-api/pkg/events"
	"github.com/skillproof/skillproof-api/pkg/github"
	"github.com/skillproof/skillproof-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.VerifiedSkill{}, &models.Task{}, &models.Submission{}, &models.SkillVerification{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// Cloudinary is only needed for file submissions; without credentials the
	// service runs github-only.
	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cloudinaryUploader, err := storage.NewCloudinaryUploader(storage.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cloudinaryUploader
	}

	// NATS is optional too; the evaluation pipeline treats publish failures
	// as non-fatal either way.
	var publisher service.EventPublisher
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	githubClient := github.NewClient(github.Config{
		Token:   cfg.GithubToken,
		Timeout: cfg.GithubFetchTimeout,
		Logger:  logger,
	})

	evaluator, err := ai.NewOpenAIEvaluator(ai.OpenAIConfig{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.OpenAIMaxTokens,
		Temperature: float32(cfg.OpenAITemperature),
		Logger:      logger,
	})
	if err != nil {
		log.Fatalf("failed to create evaluator: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	taskRepo := repository.NewTaskRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	userRepo := repository.NewUserRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)

	evaluationService := service.NewEvaluationService(submissionRepo, evaluator, publisher, logger, service.EvaluationConfig{
		RunTimeout: cfg.EvaluationRunTimeout,
	})
	taskService := service.NewTaskService(taskRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, taskRepo, verificationRepo, githubClient, uploader, evaluationService, validate, logger)
	recruiterService := service.NewRecruiterService(userRepo, redisClient, cfg.SearchCacheTTL, validate, logger)

	taskHandler := handler.NewTaskHandler(taskService, validate, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, validate, logger)
	recruiterHandler := handler.NewRecruiterHandler(recruiterService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		TaskHandler:       taskHandler,
		SubmissionHandler: submissionHandler,
		RecruiterHandler:  recruiterHandler,
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
