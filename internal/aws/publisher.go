package aws

import (
	"context"
	"encoding/json"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/imrishuroy/go-catalogflow/internal/events"
)

// Publisher sends mutation events to an SQS queue.
type Publisher struct {
	SQS      SQSAPI
	QueueURL string
}

var _ events.Notifier = (*Publisher)(nil)

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// Notify sends e as a JSON message body. event_id and kind are copied into
// message attributes so consumers can route without decoding the body.
func (p *Publisher) Notify(ctx context.Context, e events.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	attrs := map[string]string{
		"event_id": e.EventID,
		"kind":     string(e.Kind),
	}
	if e.RequestID != "" {
		attrs["request_id"] = e.RequestID
	}
	msgAttrs := make(map[string]sqstypes.MessageAttributeValue, len(attrs))
	for k, v := range attrs {
		msgAttrs[k] = sqstypes.MessageAttributeValue{
			DataType:    sdkaws.String("String"),
			StringValue: sdkaws.String(v),
		}
	}

	_, err = p.SQS.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          sdkaws.String(p.QueueURL),
		MessageBody:       sdkaws.String(string(body)),
		MessageAttributes: msgAttrs,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
