package records

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-catalogflow/internal/aws"
)

// sequenceID is the key of the counter item that issues record ids. It is
// never returned from List.
const sequenceID int64 = 0

// DynamoStore keeps records in a DynamoDB table with a numeric "id" key.
type DynamoStore struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore on tableName.
func NewDynamoStore(client aws.DynamoDBAPI, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

func idKey(id int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberN{Value: strconv.FormatInt(id, 10)},
	}
}

// isConditionalFailure detects a failed ConditionExpression, whether the
// SDK surfaced the typed exception or a generic API error.
func isConditionalFailure(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

// nextID atomically increments the sequence item. Ids only ever grow, so a
// deleted id is never issued again.
func (s *DynamoStore) nextID(ctx context.Context) (int64, error) {
	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       idKey(sequenceID),
		UpdateExpression:          sdkaws.String("ADD seq :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}},
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("increment sequence: %w", err)
	}
	seq, ok := out.Attributes["seq"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("increment sequence: missing seq attribute")
	}
	id, err := strconv.ParseInt(seq.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse sequence %q: %w", seq.Value, err)
	}
	return id, nil
}

// List scans the whole table and returns records ordered by id, which is
// creation order.
func (s *DynamoStore) List(ctx context.Context) ([]Record, error) {
	var (
		out   []Record
		start map[string]types.AttributeValue
	)
	for {
		page, err := s.client.Scan(ctx, &dyn.ScanInput{
			TableName:         &s.tableName,
			ExclusiveStartKey: start,
			ConsistentRead:    sdkaws.Bool(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scan items: %w", err)
		}
		for _, item := range page.Items {
			var r Record
			if err := attributevalue.UnmarshalMap(item, &r); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			if r.ID == sequenceID {
				continue
			}
			out = append(out, r)
		}
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		start = page.LastEvaluatedKey
	}

	slices.SortFunc(out, func(a, b Record) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *DynamoStore) Get(ctx context.Context, id int64) (*Record, error) {
	if id == sequenceID {
		return nil, fmt.Errorf("get item %d: %w", id, ErrNotFound)
	}
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            idKey(id),
		ConsistentRead: sdkaws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("get item %d: %w", id, ErrNotFound)
	}
	var r Record
	if err := attributevalue.UnmarshalMap(out.Item, &r); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &r, nil
}

func (s *DynamoStore) Create(ctx context.Context, r Record) (*Record, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return nil, err
	}
	r.ID = id
	r = withCreateDefaults(r, s.nowFunc())

	if err := s.put(ctx, r, "attribute_not_exists(id)"); err != nil {
		if isConditionalFailure(err) {
			return nil, fmt.Errorf("create item %d: id already taken: %w", id, err)
		}
		return nil, err
	}
	return &r, nil
}

// Update sets only the non-zero fields of patch in a single conditional
// UpdateItem, so concurrent updates to different fields both survive.
func (s *DynamoStore) Update(ctx context.Context, id int64, patch Record) (*Record, error) {
	if id == sequenceID {
		return nil, fmt.Errorf("update item %d: %w", id, ErrNotFound)
	}
	expr, names, values, err := updateExpression(patch)
	if err != nil {
		return nil, err
	}
	if expr == "" {
		return s.Get(ctx, id)
	}

	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       idKey(id),
		UpdateExpression:          sdkaws.String(expr),
		ConditionExpression:       sdkaws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionalFailure(err) {
			return nil, fmt.Errorf("update item %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	var r Record
	if err := attributevalue.UnmarshalMap(out.Attributes, &r); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &r, nil
}

// updateExpression builds "SET #f = :f, ..." over the fields Merge would
// change. It returns an empty expression when patch changes nothing.
func updateExpression(patch Record) (string, map[string]string, map[string]types.AttributeValue, error) {
	fields := []struct {
		name string
		set  bool
		val  any
	}{
		{"title", patch.Title != "", patch.Title},
		{"category", patch.Category != "", patch.Category},
		{"date", patch.Date != "", patch.Date},
		{"price", patch.Price != 0, patch.Price},
		{"description", patch.Description != "", patch.Description},
		{"stock", patch.Stock != 0, patch.Stock},
		{"rating", patch.Rating != 0, patch.Rating},
	}

	var clauses []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	for _, f := range fields {
		if !f.set {
			continue
		}
		av, err := attributevalue.Marshal(f.val)
		if err != nil {
			return "", nil, nil, fmt.Errorf("marshal %s: %w", f.name, err)
		}
		names["#"+f.name] = f.name
		values[":"+f.name] = av
		clauses = append(clauses, "#"+f.name+" = :"+f.name)
	}
	if len(clauses) == 0 {
		return "", nil, nil, nil
	}
	return "SET " + strings.Join(clauses, ", "), names, values, nil
}

func (s *DynamoStore) Delete(ctx context.Context, id int64) error {
	if id == sequenceID {
		return fmt.Errorf("delete item %d: %w", id, ErrNotFound)
	}
	_, err := s.client.DeleteItem(ctx, &dyn.DeleteItemInput{
		TableName:           &s.tableName,
		Key:                 idKey(id),
		ConditionExpression: sdkaws.String("attribute_exists(id)"),
	})
	if err != nil {
		if isConditionalFailure(err) {
			return fmt.Errorf("delete item %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

func (s *DynamoStore) Categories(ctx context.Context) ([]string, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Categories(all), nil
}

func (s *DynamoStore) put(ctx context.Context, r Record, condition string) error {
	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: sdkaws.String(condition),
	})
	if err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}
