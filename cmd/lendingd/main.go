package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finbank/lending-core/internal/application/usecase"
	"github.com/finbank/lending-core/internal/domain/service"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/internal/infrastructure/config"
	"github.com/finbank/lending-core/internal/infrastructure/messaging"
	pgrepo "github.com/finbank/lending-core/internal/infrastructure/persistence/postgres"
	"github.com/finbank/lending-core/internal/infrastructure/scheduler"
	"github.com/finbank/lending-core/internal/presentation/rest"
	pkgkafka "github.com/finbank/lending-core/pkg/kafka"
	"github.com/finbank/lending-core/pkg/money"
	"github.com/finbank/lending-core/pkg/observability"
	pkgpostgres "github.com/finbank/lending-core/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  "json",
		Service: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting lending-core",
		"http_port", cfg.HTTPPort,
		"valuation_interval", cfg.Policy.ValuationInterval.String(),
	)

	// Metrics exporter.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	dbCfg := pkgpostgres.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	pool, err := pkgpostgres.NewPool(dbCtx, dbCfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Run database migrations.
	if migErr := pkgpostgres.RunMigrations(dbCfg.DSN(), "file://internal/infrastructure/persistence/postgres/migrations"); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Policy values that come in as strings.
	currency, err := money.NewCurrency(cfg.Policy.DefaultCurrency)
	if err != nil {
		logger.Error("invalid DEFAULT_CURRENCY", "error", err)
		os.Exit(1)
	}
	maxAutoAmount, err := money.NewFromString(cfg.Policy.AutoApproveMaxAmount, cfg.Policy.DefaultCurrency)
	if err != nil {
		logger.Error("invalid AUTO_APPROVE_MAX_AMOUNT", "error", err)
		os.Exit(1)
	}

	// Wire infrastructure adapters.
	loanRepo := pgrepo.NewLoanRepo(pool)
	dlqRepo := pgrepo.NewDelinquencyRepo(pool)
	provRepo := pgrepo.NewProvisioningRepo(pool)
	caseRepo := pgrepo.NewCollectionCaseRepo(pool)

	kafkaCfg := pkgkafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
	}
	kafkaProducer := pkgkafka.NewProducer(kafkaCfg)
	defer kafkaProducer.Close()
	publisher := messaging.NewKafkaEventPublisher(kafkaProducer, cfg.Kafka.EventsTopic, logger)

	// Domain services.
	buckets := valueobject.DefaultBucketTable()
	scorer := service.NewScoringEngine()
	pricer := service.NewPricingEngine()
	classifier := service.NewDelinquencyClassifier(buckets)
	strategy := service.NewCollectionStrategy()
	provisioner, err := service.NewProvisioningCalculator(buckets, service.DefaultProvisioningRates())
	if err != nil {
		logger.Error("failed to build provisioning calculator", "error", err)
		os.Exit(1)
	}

	// Wire the use cases the daemon drives. The read projections are the
	// library surface consumed by embedding services.
	submitUC := usecase.NewSubmitApplicationUseCase(loanRepo, publisher, scorer, pricer, usecase.AutoApprovalPolicy{
		MinScore:  cfg.Policy.AutoApproveMinScore,
		MaxAmount: maxAutoAmount,
	})
	disburseUC := usecase.NewConfirmDisbursementUseCase(loanRepo, publisher)
	paymentUC := usecase.NewApplyPaymentUseCase(loanRepo, caseRepo, publisher)
	valuationUC := usecase.NewRunValuationUseCase(
		loanRepo, dlqRepo, provRepo, caseRepo, publisher,
		classifier, strategy, provisioner,
		currency, cfg.Policy.ValuationWorkers, logger,
	)

	// Inbound streams: application intake from the gateway, funds-transfer
	// and installment events from the payments system.
	intakeConsumer := messaging.NewApplicationConsumer(
		kafkaCfg, cfg.Kafka.IntakeTopic, submitUC, logger,
	)
	defer intakeConsumer.Close()

	paymentsConsumer := messaging.NewPaymentEventConsumer(
		kafkaCfg, cfg.Kafka.PaymentsTopic, disburseUC, paymentUC, logger,
	)
	defer paymentsConsumer.Close()

	errCh := make(chan error, 3)
	go func() {
		if err := intakeConsumer.Start(ctx); err != nil {
			errCh <- fmt.Errorf("intake consumer error: %w", err)
		}
	}()
	go func() {
		if err := paymentsConsumer.Start(ctx); err != nil {
			errCh <- fmt.Errorf("payments consumer error: %w", err)
		}
	}()

	// Daily valuation cycle.
	worker := scheduler.NewValuationWorker(valuationUC, cfg.Policy.ValuationInterval, logger)
	go worker.Run(ctx)

	// HTTP server (health checks and metrics).
	mux := http.NewServeMux()
	healthHandler := rest.NewHealthHandler(pool, logger)
	healthHandler.RegisterRoutes(mux)
	mux.Handle("/metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("lending-core stopped")
}
