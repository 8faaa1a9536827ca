package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-catalogflow/internal/events"
)

func newTestStore(mock *simpleMock, now *time.Time) *Store {
	s := NewStore(mock, "dedupe-table", 48*time.Hour)
	s.nowFunc = func() time.Time { return *now }
	return s
}

func TestClaim_Get_MarkDone_MarkFailed(t *testing.T) {
	mock := newSimpleMock()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(mock, &now)
	ctx := context.Background()
	e := events.New(events.KindCreated, 7, "Books")

	claimed, err := s.Claim(ctx, e)
	if err != nil {
		t.Fatalf("Claim error: %v", err)
	}
	if !claimed {
		t.Fatal("expected first claim to succeed")
	}

	again, err := s.Claim(ctx, e)
	if err != nil {
		t.Fatalf("second Claim error: %v", err)
	}
	if again {
		t.Fatal("expected duplicate claim to be refused")
	}

	c, err := s.Get(ctx, e.EventID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if c == nil || c.Status != StatusInProgress || c.ItemID != 7 || c.Kind != string(events.KindCreated) || c.Attempts != 1 {
		t.Fatalf("unexpected claim: %+v", c)
	}
	if c.ExpiresAt != now.Add(48*time.Hour).Unix() {
		t.Fatalf("unexpected expiry %d", c.ExpiresAt)
	}

	if err := s.MarkDone(ctx, e.EventID); err != nil {
		t.Fatalf("MarkDone error: %v", err)
	}
	if st := mock.table[e.EventID]["status"].(*types.AttributeValueMemberS); st.Value != StatusDone {
		t.Fatalf("status not DONE: %s", st.Value)
	}
	if claimed, _ := s.Claim(ctx, e); claimed {
		t.Fatal("a finished event must not be claimed again")
	}

	if err := s.MarkFailed(ctx, e.EventID, "put metric data: boom"); err != nil {
		t.Fatalf("MarkFailed error: %v", err)
	}
	if n := mock.table[e.EventID]["note"].(*types.AttributeValueMemberS); n.Value != "put metric data: boom" {
		t.Fatalf("note not stored: %s", n.Value)
	}
}

func TestClaim_FailedEventCanBeRetried(t *testing.T) {
	mock := newSimpleMock()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(mock, &now)
	ctx := context.Background()
	e := events.New(events.KindDeleted, 3, "")

	if ok, _ := s.Claim(ctx, e); !ok {
		t.Fatal("expected first claim")
	}
	if err := s.MarkFailed(ctx, e.EventID, "transient"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	ok, err := s.Claim(ctx, e)
	if err != nil || !ok {
		t.Fatalf("expected retry claim to succeed, got %v %v", ok, err)
	}
	c, _ := s.Get(ctx, e.EventID)
	if c.Attempts != 2 || c.Status != StatusInProgress {
		t.Fatalf("unexpected claim after retry: %+v", c)
	}
}

func TestClaim_ExpiredEntryCanBeReclaimed(t *testing.T) {
	mock := newSimpleMock()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(mock, &now)
	ctx := context.Background()
	e := events.New(events.KindUpdated, 9, "Toys")

	if ok, _ := s.Claim(ctx, e); !ok {
		t.Fatal("expected first claim")
	}
	now = now.Add(49 * time.Hour)
	if ok, err := s.Claim(ctx, e); err != nil || !ok {
		t.Fatalf("expected expired claim to be replaced, got %v %v", ok, err)
	}
}

func TestClaim_PropagatesOtherErrors(t *testing.T) {
	mock := newSimpleMock()
	mock.putErr = errors.New("throttled")
	now := time.Now()
	s := newTestStore(mock, &now)

	ok, err := s.Claim(context.Background(), events.New(events.KindCreated, 1, ""))
	if ok || err == nil {
		t.Fatalf("expected an error, got %v %v", ok, err)
	}
}

func TestGet_Missing(t *testing.T) {
	now := time.Now()
	s := newTestStore(newSimpleMock(), &now)
	c, err := s.Get(context.Background(), "nope")
	if err != nil || c != nil {
		t.Fatalf("expected (nil, nil), got %+v %v", c, err)
	}
}

func TestClaim_AbandonedInProgressCanBeReclaimed(t *testing.T) {
	mock := newSimpleMock()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(mock, &now)
	ctx := context.Background()
	e := events.New(events.KindCreated, 5, "Books")

	if ok, _ := s.Claim(ctx, e); !ok {
		t.Fatal("expected first claim")
	}
	c, _ := s.Get(ctx, e.EventID)
	if c.LeaseEnd != now.Add(DefaultLease).Unix() {
		t.Fatalf("unexpected lease end %d", c.LeaseEnd)
	}

	// The first worker never marked the claim done or failed.
	now = now.Add(DefaultLease - time.Minute)
	if ok, _ := s.Claim(ctx, e); ok {
		t.Fatal("a claim inside its lease must not be taken over")
	}

	now = now.Add(2 * time.Minute)
	ok, err := s.Claim(ctx, e)
	if err != nil || !ok {
		t.Fatalf("expected abandoned claim to be taken over, got %v %v", ok, err)
	}
	c, _ = s.Get(ctx, e.EventID)
	if c.Attempts != 2 || c.Status != StatusInProgress {
		t.Fatalf("unexpected claim after takeover: %+v", c)
	}
}

func TestClaim_DoneIsNeverReclaimedAfterLease(t *testing.T) {
	mock := newSimpleMock()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestStore(mock, &now)
	ctx := context.Background()
	e := events.New(events.KindUpdated, 6, "Toys")

	if ok, _ := s.Claim(ctx, e); !ok {
		t.Fatal("expected first claim")
	}
	if err := s.MarkDone(ctx, e.EventID); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	now = now.Add(DefaultLease + time.Hour)
	if ok, _ := s.Claim(ctx, e); ok {
		t.Fatal("a finished event must stay finished after its lease")
	}
}
