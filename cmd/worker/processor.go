package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	lambdaevents "github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/go-catalogflow/internal/events"
)

// claimStore is the part of idempotency.Store the processor uses.
type claimStore interface {
	Claim(ctx context.Context, e events.Event) (bool, error)
	MarkDone(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID, note string) error
}

type mutationRecorder interface {
	RecordMutation(ctx context.Context, e events.Event) error
}

// Processor turns record mutation events into CloudWatch datapoints,
// handling each event at most once per dedupe window.
type Processor struct {
	claims  claimStore
	metrics mutationRecorder
	log     *slog.Logger
}

// NewProcessor wires a processor from its stores.
func NewProcessor(claims claimStore, metrics mutationRecorder, log *slog.Logger) *Processor {
	return &Processor{claims: claims, metrics: metrics, log: log.With("component", "worker")}
}

// Handle processes an SQS batch. Returning an error makes Lambda redeliver
// the batch; messages that were already handled are skipped on the retry.
func (p *Processor) Handle(ctx context.Context, ev lambdaevents.SQSEvent) error {
	p.log.Debug("received batch", "messages", len(ev.Records))
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.log.Error("worker error", "message_id", rec.MessageId, "error", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec lambdaevents.SQSMessage) error {
	var e events.Event
	if err := json.Unmarshal([]byte(rec.Body), &e); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if !e.Valid() {
		return fmt.Errorf("invalid event in message %s: %+v", rec.MessageId, e)
	}
	log := p.log.With("event_id", e.EventID, "kind", e.Kind, "item_id", e.ItemID, "request_id", e.RequestID)

	claimed, err := p.claims.Claim(ctx, e)
	if err != nil {
		return fmt.Errorf("claim event %s: %w", e.EventID, err)
	}
	if !claimed {
		log.Info("duplicate delivery skipped")
		return nil
	}

	if err := p.metrics.RecordMutation(ctx, e); err != nil {
		if markErr := p.claims.MarkFailed(ctx, e.EventID, err.Error()); markErr != nil {
			log.Warn("mark failed", "error", markErr)
		}
		return fmt.Errorf("record metric for %s: %w", e.EventID, err)
	}

	if err := p.claims.MarkDone(ctx, e.EventID); err != nil {
		return fmt.Errorf("mark event %s done: %w", e.EventID, err)
	}
	log.Info("event processed")
	return nil
}
