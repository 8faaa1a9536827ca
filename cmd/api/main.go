package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/imrishuroy/go-catalogflow/internal/aws"
	"github.com/imrishuroy/go-catalogflow/internal/config"
	"github.com/imrishuroy/go-catalogflow/internal/events"
	"github.com/imrishuroy/go-catalogflow/internal/handlers"
	"github.com/imrishuroy/go-catalogflow/internal/importer"
	"github.com/imrishuroy/go-catalogflow/internal/logging"
	"github.com/imrishuroy/go-catalogflow/internal/records"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) error {
	var clients *aws.AWSClients
	if cfg.StoreBackend == config.BackendDynamoDB || cfg.EventsQueueURL != "" {
		c, err := aws.NewAWSClients(ctx)
		if err != nil {
			return fmt.Errorf("init aws clients: %w", err)
		}
		clients = c
	}

	store, err := newStore(cfg, clients, logger)
	if err != nil {
		return err
	}

	var notifier events.Notifier = events.Discard{}
	if cfg.EventsQueueURL != "" {
		notifier = aws.NewPublisher(clients.SQS, cfg.EventsQueueURL)
	}

	r := handlers.NewRouter(handlers.HandlerConfig{
		Store:    store,
		Notifier: notifier,
		Logger:   logger,
	}, handlers.RouterOptions{
		CORSOrigin:     cfg.CORSOrigin,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	if !cfg.RunLocal {
		adapter := ginadapter.New(r)
		lambda.Start(func(ctx context.Context, req lambdaevents.APIGatewayProxyRequest) (lambdaevents.APIGatewayProxyResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		})
		return nil
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, "catalog-api"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("running local server", "addr", srv.Addr, "backend", cfg.StoreBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newStore picks the backend. The memory store is seeded from SEED_XLSX
// when set, otherwise with SEED_COUNT generated records.
func newStore(cfg config.ServerConfig, clients *aws.AWSClients, logger *slog.Logger) (records.Store, error) {
	if cfg.StoreBackend == config.BackendDynamoDB {
		logger.Info("using dynamodb store", "table", cfg.ItemsTable)
		return records.NewDynamoStore(clients.DynamoDB, cfg.ItemsTable), nil
	}

	if cfg.SeedXLSX != "" {
		seed, err := seedFromFile(cfg.SeedXLSX)
		if err != nil {
			return nil, err
		}
		logger.Info("seeded from spreadsheet", "file", cfg.SeedXLSX, "records", len(seed))
		return records.NewMemoryStore(seed), nil
	}

	seed := records.Generate(cfg.SeedCount, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), time.Now())
	logger.Info("seeded generated records", "records", len(seed))
	return records.NewMemoryStore(seed), nil
}

func seedFromFile(path string) ([]records.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	rows, err := importer.ParseRecords(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records.Numbered(rows, time.Now()), nil
}
