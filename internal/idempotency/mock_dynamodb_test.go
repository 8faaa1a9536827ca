package idempotency

import (
	"context"
	"errors"
	"strconv"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// simpleMock is a small in-memory table keyed by event_id. It evaluates
// only the claim condition and SET updates Store issues.
type simpleMock struct {
	mu          sync.Mutex
	table       map[string]map[string]types.AttributeValue
	putCalls    int
	updateCalls int
	putErr      error
}

func newSimpleMock() *simpleMock {
	return &simpleMock{table: map[string]map[string]types.AttributeValue{}}
}

func stringKey(m map[string]types.AttributeValue) (string, error) {
	v, ok := m["event_id"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing key")
	}
	return v.Value, nil
}

func (m *simpleMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls++
	if m.putErr != nil {
		return nil, m.putErr
	}
	k, err := stringKey(params.Item)
	if err != nil {
		return nil, err
	}
	if existing, ok := m.table[k]; ok && params.ConditionExpression != nil {
		if *params.ConditionExpression != claimCondition {
			return nil, errors.New("unsupported condition")
		}
		status := existing["status"].(*types.AttributeValueMemberS).Value
		failed := params.ExpressionAttributeValues[":failed"].(*types.AttributeValueMemberS).Value
		inProgress := params.ExpressionAttributeValues[":inprogress"].(*types.AttributeValueMemberS).Value
		now := numberAttr(params.ExpressionAttributeValues, ":now")
		expires := numberAttr(existing, "expires_at")
		_, hasLease := existing["lease_until"]
		abandoned := status == inProgress && hasLease && numberAttr(existing, "lease_until") < now
		if status != failed && !abandoned && expires >= now {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func numberAttr(m map[string]types.AttributeValue, name string) int64 {
	v, ok := m[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(v.Value, 10, 64)
	return n
}

func (m *simpleMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := stringKey(params.Key)
	if err != nil {
		return nil, err
	}
	return &dyn.GetItemOutput{Item: m.table[k]}, nil
}

// UpdateItem applies "SET #s = :s, note = :n, updated_at = :ua".
func (m *simpleMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	k, err := stringKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		item = map[string]types.AttributeValue{"event_id": params.Key["event_id"]}
	}
	item["status"] = params.ExpressionAttributeValues[":s"]
	item["note"] = params.ExpressionAttributeValues[":n"]
	item["updated_at"] = params.ExpressionAttributeValues[":ua"]
	m.table[k] = item
	return &dyn.UpdateItemOutput{}, nil
}

func (m *simpleMock) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	return nil, errors.New("DeleteItem not supported by mock")
}

func (m *simpleMock) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	return nil, errors.New("Scan not supported by mock")
}
