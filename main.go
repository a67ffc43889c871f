// Command btcSignalBot runs the continuous scanner: it polls fine-grained
// candles, alerts on signal transitions, and emails an hourly rollup of
// everything that fired in the window.
package main

import (
	"context"
	"log" // Use standard log only for fatal errors before the logger is set up

	"btcSignalBot/config"
	"btcSignalBot/internal/adapters/binanceclient"
	"btcSignalBot/internal/adapters/logger"
	"btcSignalBot/internal/adapters/mailer"
	"btcSignalBot/internal/adapters/sqlite"
	"btcSignalBot/internal/app"
)

func main() {
	// 1. Load Configuration. The only failure allowed to kill the process.
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Signal Log (SQLite Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize signal log: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing signal log")
		}
	}()

	// 4. Initialize Market Data Client (Binance Adapter)
	market, err := binanceclient.New(binanceclient.Config{Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	// 5. Initialize Alert Dispatcher (SMTP Adapter)
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

	// 6. Build the configured classification policy
	policy, err := app.PolicyFromConfig(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to build signal policy: %v", err)
	}

	// 7. Initialize and start the scanner
	service, err := app.New(cfg, appLogger, market, notifier, repo, policy)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize service: %v", err)
	}

	if err := service.RunLoop(context.Background()); err != nil {
		appLogger.Error(context.Background(), err, "Scanner exited with error")
		log.Fatalf("FATAL: Scanner exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Scanner finished gracefully.")
}
