package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"modelgate/adapters/api"
	"modelgate/adapters/excel"
	"modelgate/adapters/postgres"
	"modelgate/adapters/rng"
	"modelgate/app"
	"modelgate/internal/bootstrap"
	"modelgate/internal/config"
	"modelgate/internal/degrade"
	"modelgate/internal/evaluate"
	"modelgate/internal/logging"
	"modelgate/internal/policy"
	"modelgate/internal/testkit"
	"modelgate/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("service_failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	ledger, cleanup, err := initLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	estimator, err := bootstrap.NewEstimator(
		rng.New(), cfg.Validation.BootstrapIterations, cfg.Validation.ConfidenceLevel, logger)
	if err != nil {
		return err
	}
	calculator := evaluate.NewCalculator(estimator, logger)

	pol, err := policy.NewPolicy(cfg.Validation.Thresholds(), logger)
	if err != nil {
		return err
	}
	detector := degrade.NewDetector(logger)

	service := app.NewValidationService(
		excel.NewOutcomeReader(logger),
		ledger,
		calculator,
		pol,
		detector,
		cfg.Validation.MaxConcurrent,
		logger,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: api.NewServer(service, logger).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutdown_requested", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// initLedger connects the PostgreSQL audit ledger when DATABASE_URL is set,
// and otherwise falls back to in-memory storage for local runs
func initLedger(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.LedgerPort, func(), error) {
	if cfg.Database.URL == "" {
		logger.Warn("ledger_in_memory",
			zap.String("reason", "DATABASE_URL not set; snapshots will not survive restarts"))
		return testkit.NewMemoryLedger(), func() {}, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}

	logger.Info("ledger_postgres_connected")
	return postgres.NewLedger(db), func() { db.Close() }, nil
}
