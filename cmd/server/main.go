package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"eventdesk/config"
	"eventdesk/internal/adapters/auth"
	"eventdesk/internal/adapters/blob"
	"eventdesk/internal/adapters/email"
	deliveryhttp "eventdesk/internal/delivery/http"
	"eventdesk/internal/delivery/http/controllers"
	"eventdesk/internal/domain"
	"eventdesk/internal/repository/dynamo"
	"eventdesk/internal/services"
)

// @title Eventdesk API
// @version 1.0
// @description Event management backend: accounts, events, registrations, and email notifications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	awsCfg := aws.Config{
		Region: cfg.AWSRegion,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		),
	}

	// Storage
	clock := domain.NewSystemClock()
	db := dynamo.NewClient(awsCfg)
	eventRepo := dynamo.NewEventRepository(db, cfg.EventsTable, clock)
	userRepo := dynamo.NewUserRepository(db, cfg.UsersTable, clock)
	registrationRepo := dynamo.NewRegistrationRepository(db, cfg.RegistrationsTable)
	blobs := blob.NewS3Store(s3.NewFromConfig(awsCfg), cfg.AssetsBucket, cfg.AWSRegion)

	// Notifications
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.MailProvider,
		FromAddress: cfg.MailFromAddress,
		FromName:    cfg.MailFromName,
	}, awsCfg)
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	notifier := services.NewNotificationDispatcher(emailService, logger)

	// Services
	assets := services.NewAssetCoordinator(blobs, logger)
	hasher := auth.NewBcryptHasher(0)
	issuer := auth.NewJWTIssuer(cfg.JWTSecret)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	userService := services.NewUserService(userRepo, assets, notifier, hasher, issuer, cfg.TokenExpiry, clock, cfg.RequestTimeout)
	eventService := services.NewEventService(eventRepo, userRepo, assets, notifier, clock, cfg.RequestTimeout)
	registrationService := services.NewRegistrationService(registrationRepo, eventService, userRepo, notifier, clock, cfg.RequestTimeout)

	// Delivery
	router := deliveryhttp.NewRouter(
		logger,
		verifier,
		controllers.NewAuthController(logger, userService),
		controllers.NewEventController(logger, eventService),
		controllers.NewUserController(logger, userService),
		controllers.NewRegistrationController(logger, registrationService),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
