package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/imrishuroy/go-catalogflow/internal/query"
	"github.com/imrishuroy/go-catalogflow/internal/records"
)

func TestService_FetchItemsReadsThrough(t *testing.T) {
	svc, ts, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.FetchItems(ctx, query.Values{"page": float64(1), "limit": float64(10)})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	// Same parameters in a different insertion order, plus the "all" sentinel.
	second, err := svc.FetchItems(ctx, query.Values{"category": "all", "limit": float64(10), "page": float64(1)})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if ts.count(http.MethodGet, "/api/items") != 1 {
		t.Fatalf("expected a single network read, got %d", ts.count(http.MethodGet, "/api/items"))
	}
	if first.TotalItems != second.TotalItems || len(second.Items) != 10 {
		t.Fatalf("cached page differs: %+v vs %+v", first, second)
	}

	if _, err := svc.FetchItems(ctx, query.Values{"page": float64(2), "limit": float64(10)}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if ts.count(http.MethodGet, "/api/items") != 2 {
		t.Fatal("different parameters must miss the cache")
	}
}

func TestService_MutationsInvalidateListCache(t *testing.T) {
	svc, ts, cache := newTestService(t)
	ctx := context.Background()
	params := query.Values{"page": float64(1), "limit": float64(5)}

	before, _ := svc.FetchItems(ctx, params)
	_, _ = svc.FetchItems(ctx, query.Values{"page": float64(2), "limit": float64(5)})
	_, _ = svc.FetchCategories(ctx)

	if _, err := svc.CreateItem(ctx, records.Record{Title: "New", Category: "Books"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if n, _ := cache.Count(ctx, NamespaceItems); n != 0 {
		t.Fatalf("list cache not invalidated: %d entries", n)
	}
	if n, _ := cache.Count(ctx, NamespaceCategories); n != 1 {
		t.Fatalf("categories must stay cached, got %d", n)
	}

	after, _ := svc.FetchItems(ctx, params)
	if after.TotalItems != before.TotalItems+1 {
		t.Fatalf("expected fresh data after create: %d vs %d", after.TotalItems, before.TotalItems)
	}
	if ts.count(http.MethodGet, "/api/items") != 3 {
		t.Fatalf("expected refetch after invalidation, got %d reads", ts.count(http.MethodGet, "/api/items"))
	}

	if err := svc.DeleteItem(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, _ := cache.Count(ctx, NamespaceItems); n != 0 {
		t.Fatal("delete must invalidate the list cache")
	}
}

func TestService_FailedMutationKeepsCache(t *testing.T) {
	svc, _, cache := newTestService(t)
	ctx := context.Background()
	_, _ = svc.FetchItems(ctx, query.Values{"page": float64(1)})

	if _, err := svc.UpdateItem(ctx, 999, records.Record{Title: "x"}); err == nil {
		t.Fatal("expected not found")
	}
	if n, _ := cache.Count(ctx, NamespaceItems); n != 1 {
		t.Fatalf("a failed mutation must not invalidate, got %d", n)
	}
}

func TestService_CategoriesCached(t *testing.T) {
	svc, ts, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		cats, err := svc.FetchCategories(ctx)
		if err != nil || len(cats) != 2 {
			t.Fatalf("categories: %v %v", cats, err)
		}
	}
	if ts.count(http.MethodGet, "/api/categories") != 1 {
		t.Fatalf("expected one network read, got %d", ts.count(http.MethodGet, "/api/categories"))
	}
}

func TestService_NilLoggersAreDiscarded(t *testing.T) {
	ts := startTestServer(t)
	ctx := context.Background()

	cache, err := OpenCache(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })

	svc := NewService(NewAPI(ts.URL+"/api", nil), cache, nil)
	app := NewApp(svc, NewStore(InitialState()), nil)

	if err := app.Load(ctx, map[string]string{"page": "1"}); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := svc.FetchItems(ctx, query.Values{"page": float64(1)}); err != nil {
		t.Fatalf("cached fetch: %v", err)
	}
	if len(app.State().Page.Items) == 0 {
		t.Fatal("expected items in state")
	}

	bare := &API{BaseURL: ts.URL + "/api", HTTPClient: http.DefaultClient}
	if _, err := bare.ListCategories(ctx); err != nil {
		t.Fatalf("api without logger: %v", err)
	}
}
