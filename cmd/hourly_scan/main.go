// Command hourly_scan performs a single threshold evaluation on the
// context interval and exits. Meant to be invoked by an external
// scheduler (e.g., cron at the top of each hour); it exits zero on any
// normal evaluation cycle, including NO_SIGNAL and transient fetch
// failures, and non-zero only on configuration failure.
package main

import (
	"context"
	"log"

	"btcSignalBot/config"
	"btcSignalBot/internal/adapters/binanceclient"
	"btcSignalBot/internal/adapters/logger"
	"btcSignalBot/internal/adapters/mailer"
	"btcSignalBot/internal/adapters/sqlite"
	"btcSignalBot/internal/app"
	"btcSignalBot/internal/strategy"
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

	// The single-timeframe hourly bot always classifies on RSI thresholds.
	policy, err := strategy.NewThresholdPolicy(cfg.RSIOversold, cfg.RSIOverbought)
	if err != nil {
		log.Fatalf("FATAL: Failed to build signal policy: %v", err)
	}

	service, err := app.New(cfg, appLogger, market, notifier, repo, policy)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize service: %v", err)
	}

	if err := service.RunOnce(context.Background()); err != nil {
		log.Fatalf("FATAL: Evaluation failed: %v", err)
	}
}
