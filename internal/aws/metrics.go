package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/imrishuroy/go-catalogflow/internal/events"
)

// MetricsPublisher records one CloudWatch datapoint per mutation event.
type MetricsPublisher struct {
	CloudWatch CloudWatchAPI
	Namespace  string
}

// NewMetricsPublisher returns a MetricsPublisher writing into namespace.
func NewMetricsPublisher(cw CloudWatchAPI, namespace string) *MetricsPublisher {
	return &MetricsPublisher{CloudWatch: cw, Namespace: namespace}
}

// RecordMutation puts a count of 1 under the event kind, dimensioned by
// category when the event carries one.
func (m *MetricsPublisher) RecordMutation(ctx context.Context, e events.Event) error {
	datum := cwtypes.MetricDatum{
		MetricName: sdkaws.String(string(e.Kind)),
		Unit:       cwtypes.StandardUnitCount,
		Value:      sdkaws.Float64(1),
		Timestamp:  sdkaws.Time(e.OccurredAt),
	}
	if e.OccurredAt.IsZero() {
		datum.Timestamp = sdkaws.Time(time.Now().UTC())
	}
	if e.Category != "" {
		datum.Dimensions = []cwtypes.Dimension{
			{Name: sdkaws.String("Category"), Value: sdkaws.String(e.Category)},
		}
	}

	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  sdkaws.String(m.Namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
