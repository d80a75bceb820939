package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"orderflow/cmd"
	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/workflowfile"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/jobs"
	platform "orderflow/internal/platform/observability"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const serviceName = "orderflow"

func main() {
	configs := getConfigs()
	if err := configs.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, configs); err != nil {
		slog.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configs cmd.Config) error {
	instruments, shutdownTelemetry, err := platform.Init(ctx, platform.Config{
		ServiceName:  serviceName,
		Environment:  configs.Environment,
		LogLevel:     configs.LogLevel,
		OTLPEndpoint: configs.OTLPEndpoint,
		OTLPInsecure: configs.OTLPInsecure,
		StdoutTraces: configs.StdoutTraces,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(shutdownCtx)
	}()
	logger := instruments.Logger

	overrides, err := workflowfile.LoadDir(configs.WorkflowDir)
	if err != nil {
		return fmt.Errorf("load workflow overrides: %w", err)
	}
	workflows, err := services.NewWorkflowRegistry(services.DefaultOrderWorkflow(), overrides)
	if err != nil {
		return err
	}

	logger.Info("connecting to database", "dsn", configs.RedactedDSN())
	gormDB, err := postgres.Connect(ctx, configs.DSN())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	app := cmd.NewCompositionRoot(configs, gormDB, workflows, instruments)

	listener, err := postgres.NewOutboxListener(configs.DSN(), logger)
	if err != nil {
		return fmt.Errorf("listen for outbox notifications: %w", err)
	}
	defer listener.Close()

	relayCmd, err := app.CreateRelayCommand()
	if err != nil {
		return fmt.Errorf("relay configuration: %w", err)
	}
	jobManager := jobs.NewJobManager(
		jobs.NewListenerJob(listener, logger),
		jobs.NewOutboxRelayJob(app.CreateDispatchOutboxCommandHandler(), relayCmd, configs.RelaySchedule,
			listener.Wake(), logger),
	)
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	return startWebServer(ctx, app, configs.HTTPPort, logger)
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	return cmd.Config{
		HTTPPort:         envOrDefault("HTTP_PORT", "8080"),
		DBHost:           envOrDefault("DB_HOST", "localhost"),
		DBPort:           envOrDefault("DB_PORT", "5432"),
		DBUser:           envOrDefault("DB_USER", "orderflow"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           envOrDefault("DB_NAME", "orderflow"),
		DBSslMode:        envOrDefault("DB_SSLMODE", "disable"),
		RelaySchedule:    envOrDefault("OUTBOX_RELAY_SCHEDULE", jobs.DefaultRelaySchedule),
		RelayBatchSize:   intEnv("OUTBOX_RELAY_BATCH_SIZE", 100),
		RelayMaxAttempts: intEnv("OUTBOX_RELAY_MAX_ATTEMPTS", 10),
		WorkflowDir:      os.Getenv("WORKFLOW_DIR"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		Environment:      envOrDefault("ENVIRONMENT", "local"),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:     os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") != "0",
		StdoutTraces:     os.Getenv("OTEL_TRACES_STDOUT") == "1",
	}
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, raw)
	}
	return v
}

func startWebServer(ctx context.Context, app cmd.CompositionRoot, port string, logger *slog.Logger) error {
	doc, err := httpin.LoadOpenAPI(ctx)
	if err != nil {
		return err
	}
	e, err := httpin.NewEcho(app.CreateHTTPServer(), doc, logger)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "port", port)
		errCh <- e.Start(fmt.Sprintf("0.0.0.0:%s", port))
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down http server")
	return e.Shutdown(shutdownCtx)
}
