package main

import (
	"fmt"
	"os"

	"centsible/internal/config"
	"centsible/internal/database"
	"centsible/internal/events"
	"centsible/internal/logger"
	"centsible/internal/server"
	"centsible/internal/validator"

	_ "centsible/internal/docs" // Import swagger docs
)

// @title           Centsible API
// @version         1.0
// @description     Centsible is a household budgeting application for tracking income, spending, savings goals and bills.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("Failed to close database", "error", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	var publisher events.Publisher = events.NoopPublisher{}
	if appConfig.AMQPURL != "" {
		client, err := events.NewClient(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		defer client.Close()
		publisher = client
	} else {
		log.Warn("AMQP_URL not set, bill reminders will not be delivered")
	}

	srv := server.New(appConfig, dbManager.DB(), publisher)
	defer srv.Hub.Close()

	if !appConfig.BillingEnabled() {
		log.Info("Stripe is not configured, billing endpoints are disabled")
	}

	log.Infof("Starting Centsible API on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return srv.Router.Run(":" + appConfig.Port)
}
