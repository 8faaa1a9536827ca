package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-catalogflow/internal/aws"
	"github.com/imrishuroy/go-catalogflow/internal/events"
)

// claimCondition lets a new claim through when no entry exists, when the
// previous attempt failed, when an IN_PROGRESS attempt outlived its lease,
// or when the entry outlived its TTL but has not been reaped yet.
const claimCondition = "attribute_not_exists(event_id) OR #s = :failed OR (#s = :inprogress AND lease_until < :now) OR expires_at < :now"

// DefaultLease covers the longest a Lambda invocation can run. A worker that
// dies mid-event leaves its claim IN_PROGRESS; after the lease a redelivery
// may take it over.
const DefaultLease = 15 * time.Minute

// Store records which events the worker has already handled.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration
	lease     time.Duration
	nowFunc   func() time.Time
}

// NewStore returns a Store over tableName whose entries expire after ttlWindow.
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		lease:     DefaultLease,
		nowFunc:   time.Now,
	}
}

// Claim marks e as IN_PROGRESS. It returns false, with no error, when another
// delivery of the same event finished it or holds a live claim on it.
func (s *Store) Claim(ctx context.Context, e events.Event) (bool, error) {
	now := s.nowFunc().UTC()

	attempts := 1
	if prev, err := s.Get(ctx, e.EventID); err != nil {
		return false, err
	} else if prev != nil {
		attempts = prev.Attempts + 1
	}

	item, err := attributevalue.MarshalMap(Claim{
		EventID:   e.EventID,
		Kind:      string(e.Kind),
		ItemID:    e.ItemID,
		Status:    StatusInProgress,
		Attempts:  attempts,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.ttlWindow).Unix(),
		LeaseEnd:  now.Add(s.lease).Unix(),
	})
	if err != nil {
		return false, fmt.Errorf("marshal claim: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:                &s.tableName,
		Item:                     item,
		ConditionExpression:      awsString(claimCondition),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed":     &types.AttributeValueMemberS{Value: StatusFailed},
			":inprogress": &types.AttributeValueMemberS{Value: StatusInProgress},
			":now":        &types.AttributeValueMemberN{Value: strconv.FormatInt(now.Unix(), 10)},
		},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		return false, fmt.Errorf("put claim: %w", err)
	}
	return true, nil
}

// Get returns the claim for eventID, or (nil, nil) when there is none.
func (s *Store) Get(ctx context.Context, eventID string) (*Claim, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            eventKey(eventID),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get claim: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var c Claim
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, fmt.Errorf("unmarshal claim: %w", err)
	}
	return &c, nil
}

// MarkDone records that the event was fully handled.
func (s *Store) MarkDone(ctx context.Context, eventID string) error {
	return s.setStatus(ctx, eventID, StatusDone, "")
}

// MarkFailed records a failed attempt so a redelivery may claim it again.
func (s *Store) MarkFailed(ctx context.Context, eventID, note string) error {
	return s.setStatus(ctx, eventID, StatusFailed, note)
}

func (s *Store) setStatus(ctx context.Context, eventID, status, note string) error {
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              eventKey(eventID),
		UpdateExpression: awsString("SET #s = :s, note = :n, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s":  &types.AttributeValueMemberS{Value: status},
			":n":  &types.AttributeValueMemberS{Value: note},
			":ua": &types.AttributeValueMemberS{Value: s.nowFunc().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		return fmt.Errorf("mark %s: %w", status, err)
	}
	return nil
}

func eventKey(eventID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"event_id": &types.AttributeValueMemberS{Value: eventID},
	}
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }
