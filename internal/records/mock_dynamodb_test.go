package records

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a single-table in-memory stand-in keyed by the numeric id.
// It understands only the condition and update expressions DynamoStore
// issues, and pages Scan results pageSize items at a time.
type mockDynamo struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	pageSize int
	scans    int
	puts     int

	// eventualReads counts GetItem and Scan calls made without ConsistentRead.
	eventualReads int
	lastUpdate    *dyn.UpdateItemInput
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		items:    map[string]map[string]types.AttributeValue{},
		pageSize: 2,
	}
}

func keyOf(m map[string]types.AttributeValue) (string, error) {
	v, ok := m["id"].(*types.AttributeValueMemberN)
	if !ok {
		return "", errors.New("missing numeric id")
	}
	return v.Value, nil
}

func (m *mockDynamo) checkCondition(cond *string, exists bool) error {
	if cond == nil {
		return nil
	}
	switch *cond {
	case "attribute_not_exists(id)":
		if exists {
			return &types.ConditionalCheckFailedException{}
		}
	case "attribute_exists(id)":
		if !exists {
			return &types.ConditionalCheckFailedException{}
		}
	}
	return nil
}

func (m *mockDynamo) PutItem(ctx context.Context, in *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	k, err := keyOf(in.Item)
	if err != nil {
		return nil, err
	}
	_, exists := m.items[k]
	if err := m.checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	m.items[k] = in.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, in *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countRead(in.ConsistentRead)
	k, err := keyOf(in.Key)
	if err != nil {
		return nil, err
	}
	return &dyn.GetItemOutput{Item: m.items[k]}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, in *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := keyOf(in.Key)
	if err != nil {
		return nil, err
	}
	if in.UpdateExpression != nil && strings.HasPrefix(*in.UpdateExpression, "SET ") {
		return m.set(k, in)
	}
	if in.UpdateExpression == nil || *in.UpdateExpression != "ADD seq :one" {
		return nil, errors.New("unsupported update expression")
	}
	item, ok := m.items[k]
	if !ok {
		item = map[string]types.AttributeValue{"id": in.Key["id"]}
	}
	var cur int64
	if v, ok := item["seq"].(*types.AttributeValueMemberN); ok {
		cur, _ = strconv.ParseInt(v.Value, 10, 64)
	}
	next := &types.AttributeValueMemberN{Value: strconv.FormatInt(cur+1, 10)}
	item["seq"] = next
	m.items[k] = item
	return &dyn.UpdateItemOutput{Attributes: map[string]types.AttributeValue{"seq": next}}, nil
}

// set applies "SET #a = :a, #b = :b" in place and returns ALL_NEW.
func (m *mockDynamo) set(k string, in *dyn.UpdateItemInput) (*dyn.UpdateItemOutput, error) {
	m.lastUpdate = in
	item, exists := m.items[k]
	if err := m.checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	if !exists {
		item = map[string]types.AttributeValue{"id": in.Key["id"]}
	}
	next := make(map[string]types.AttributeValue, len(item))
	for name, v := range item {
		next[name] = v
	}
	for _, clause := range strings.Split(strings.TrimPrefix(*in.UpdateExpression, "SET "), ", ") {
		placeholder, valueRef, ok := strings.Cut(clause, " = ")
		if !ok {
			return nil, errors.New("malformed SET clause " + clause)
		}
		name, ok := in.ExpressionAttributeNames[placeholder]
		if !ok {
			return nil, errors.New("unbound name " + placeholder)
		}
		v, ok := in.ExpressionAttributeValues[valueRef]
		if !ok {
			return nil, errors.New("unbound value " + valueRef)
		}
		next[name] = v
	}
	m.items[k] = next
	return &dyn.UpdateItemOutput{Attributes: next}, nil
}

func (m *mockDynamo) countRead(consistent *bool) {
	if consistent == nil || !*consistent {
		m.eventualReads++
	}
}

func (m *mockDynamo) DeleteItem(ctx context.Context, in *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := keyOf(in.Key)
	if err != nil {
		return nil, err
	}
	_, exists := m.items[k]
	if err := m.checkCondition(in.ConditionExpression, exists); err != nil {
		return nil, err
	}
	delete(m.items, k)
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, in *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans++
	m.countRead(in.ConsistentRead)

	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	// Scan order in DynamoDB is arbitrary; sort descending so List has to
	// restore id order itself.
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.ParseInt(keys[i], 10, 64)
		b, _ := strconv.ParseInt(keys[j], 10, 64)
		return a > b
	})

	start := 0
	if in.ExclusiveStartKey != nil {
		last, err := keyOf(in.ExclusiveStartKey)
		if err != nil {
			return nil, err
		}
		for i, k := range keys {
			if k == last {
				start = i + 1
				break
			}
		}
	}
	end := min(start+m.pageSize, len(keys))

	out := &dyn.ScanOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, m.items[k])
	}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{"id": &types.AttributeValueMemberN{Value: keys[end-1]}}
	}
	return out, nil
}
