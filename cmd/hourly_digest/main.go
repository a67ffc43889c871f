// Command hourly_digest emails a summary of the signals persisted over
// the last hour and exits. Meant to run from a scheduler offset a few
// minutes past the hour so the scanner's final evaluations have landed.
package main

import (
	"context"
	"log"
	"time"

	"btcSignalBot/config"
	"btcSignalBot/internal/adapters/binanceclient"
	"btcSignalBot/internal/adapters/logger"
	"btcSignalBot/internal/adapters/mailer"
	"btcSignalBot/internal/adapters/sqlite"
	"btcSignalBot/internal/app"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)

	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize signal log: %v", err)
	}
	defer repo.Close()

	market, err := binanceclient.New(binanceclient.Config{Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	notifier, err := mailer.New(mailer.Config{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		Username:  cfg.EmailAddress,
		Password:  cfg.AppPassword,
		Recipient: cfg.RecipientEmail,
		Logger:    appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize mailer: %v", err)
	}

	policy, err := app.PolicyFromConfig(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to build signal policy: %v", err)
	}

	service, err := app.New(cfg, appLogger, market, notifier, repo, policy)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize service: %v", err)
	}

	// A failed read of the signal log is transient; the next scheduled
	// run retries. Only configuration and startup failures exit non-zero.
	if err := service.SendDigest(context.Background(), time.Now()); err != nil {
		appLogger.Error(context.Background(), err, "Digest delivery failed")
	}
}
