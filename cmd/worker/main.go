package main

import (
	"context"
	"log"
	"os"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-catalogflow/internal/aws"
	"github.com/imrishuroy/go-catalogflow/internal/config"
	"github.com/imrishuroy/go-catalogflow/internal/idempotency"
	"github.com/imrishuroy/go-catalogflow/internal/logging"
)

func main() {
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		logger.Error("failed to init aws clients", "error", err)
		os.Exit(1)
	}

	p := NewProcessor(
		idempotency.NewStore(clients.DynamoDB, cfg.IdempotencyTable, cfg.DedupeTTL),
		aws.NewMetricsPublisher(clients.CloudWatch, cfg.MetricsNamespace),
		logger,
	)

	// RUN_LOCAL=true feeds a single message from LOCAL_SQS_BODY through the handler.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_SQS_BODY")
		if body == "" {
			logger.Error("LOCAL_SQS_BODY is required when RUN_LOCAL=true")
			os.Exit(1)
		}
		ev := lambdaevents.SQSEvent{Records: []lambdaevents.SQSMessage{{MessageId: "local-1", Body: body}}}
		if err := p.Handle(context.Background(), ev); err != nil {
			logger.Error("local handler error", "error", err)
			os.Exit(1)
		}
		return
	}

	lambda.Start(p.Handle)
}
