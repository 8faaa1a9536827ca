package client

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/imrishuroy/go-catalogflow/internal/logging"
)

func TestCache_PutGetClear(t *testing.T) {
	ctx := context.Background()
	c := newTestCache(t)

	var out []string
	if ok, err := c.Get(ctx, NamespaceCategories, "all", &out); ok || err != nil {
		t.Fatalf("expected miss, got %v %v", ok, err)
	}

	if err := c.Put(ctx, NamespaceCategories, "all", []string{"A", "B"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := c.Put(ctx, NamespaceCategories, "all", []string{"C"}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if ok, err := c.Get(ctx, NamespaceCategories, "all", &out); !ok || err != nil || len(out) != 1 || out[0] != "C" {
		t.Fatalf("unexpected get: %v %v %v", out, ok, err)
	}

	_ = c.Put(ctx, NamespaceItems, "k1", 1)
	_ = c.Put(ctx, NamespaceItems, "k2", 2)
	if n, _ := c.Count(ctx, NamespaceItems); n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}
	if err := c.ClearNamespace(ctx, NamespaceItems); err != nil {
		t.Fatalf("clear namespace: %v", err)
	}
	if n, _ := c.Count(ctx, NamespaceItems); n != 0 {
		t.Fatalf("items not cleared: %d", n)
	}
	if n, _ := c.Count(ctx, NamespaceCategories); n != 1 {
		t.Fatalf("categories should survive: %d", n)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n, _ := c.Count(ctx, NamespaceCategories); n != 0 {
		t.Fatalf("expected empty cache, got %d", n)
	}
}

func TestCache_PersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := OpenCache(ctx, path, logging.Discard())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := c.Put(ctx, NamespaceItems, "key", map[string]int{"n": 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	c.Close()

	c2, err := OpenCache(ctx, path, logging.Discard())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c2.Close()
	var got map[string]int
	if ok, err := c2.Get(ctx, NamespaceItems, "key", &got); !ok || err != nil || got["n"] != 1 {
		t.Fatalf("entry lost: %v %v %v", got, ok, err)
	}
}
