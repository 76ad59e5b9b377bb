package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/avangard-team/auth-service/internal/adapter"
	"github.com/avangard-team/auth-service/internal/config"
	"github.com/avangard-team/auth-service/internal/mailer"
	"github.com/avangard-team/auth-service/internal/middleware"
	"github.com/avangard-team/auth-service/internal/repository"
	"github.com/avangard-team/auth-service/internal/router"
	"github.com/avangard-team/auth-service/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Connect to MongoDB
	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err = mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.MongoDB)

	// Select the mail transport
	var m mailer.Mailer
	switch cfg.MailerDriver {
	case "mailersend":
		m = mailer.NewMailerSendService(cfg.MailerSendAPIKey, cfg.MailFrom, cfg.MailSenderName, logger)
	default:
		m = mailer.NewSMTPMailerService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom, cfg.MailSenderName, logger)
	}

	userRepo := repository.NewUserRepository(db, logger)
	userUsecase := usecase.NewUserUsecase(userRepo, m, cfg.JWTSecret, cfg.BaseURL, logger)
	userHandler := adapter.NewUserHandler(userUsecase, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger(logger))
	router.SetupUserRoutes(r, userHandler, cfg.JWTSecret, logger)

	httpServerAddr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting Auth Service HTTP server", zap.String("address", httpServerAddr))
	if err := http.ListenAndServe(httpServerAddr, r); err != nil {
		logger.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
