package idempotency

import "time"

// Claim status values.
const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// Claim is the dedupe entry the worker writes for each event it handles.
type Claim struct {
	EventID   string    `dynamodbav:"event_id"` // PK
	Kind      string    `dynamodbav:"kind"`
	ItemID    int64     `dynamodbav:"item_id"`
	Status    string    `dynamodbav:"status"`
	Attempts  int       `dynamodbav:"attempts"`
	CreatedAt time.Time `dynamodbav:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
	ExpiresAt int64     `dynamodbav:"expires_at"` // TTL epoch seconds
	LeaseEnd  int64     `dynamodbav:"lease_until"` // epoch seconds; an IN_PROGRESS claim past this is abandoned
	Note      string    `dynamodbav:"note,omitempty"`
}
