package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-catalogflow/internal/handlers"
	"github.com/imrishuroy/go-catalogflow/internal/logging"
	"github.com/imrishuroy/go-catalogflow/internal/records"
)

// testServer runs the real service router over a small memory store and
// counts the requests that reach it.
type testServer struct {
	*httptest.Server
	mu    sync.Mutex
	hits  map[string]int
	gate  chan struct{} // when set, list requests with search=slow wait on it
	began chan struct{}
}

func (s *testServer) count(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

func seed() []records.Record {
	out := make([]records.Record, 0, 20)
	for i := 1; i <= 20; i++ {
		cat := []string{"Books", "Toys"}[i%2]
		out = append(out, records.Record{
			ID:          int64(i),
			Title:       fmt.Sprintf("%s Item %d", cat, i),
			Category:    cat,
			Date:        fmt.Sprintf("2024-02-%02d", i),
			Price:       float64(i) * 5,
			Description: "seeded",
			Stock:       i,
			Rating:      i%5 + 1,
		})
	}
	return out
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := handlers.NewRouter(handlers.HandlerConfig{Store: records.NewMemoryStore(seed())}, handlers.RouterOptions{})

	ts := &testServer{hits: map[string]int{}}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		ts.hits[r.Method+" "+r.URL.Path]++
		gate, began := ts.gate, ts.began
		ts.mu.Unlock()

		if gate != nil && r.URL.Query().Get("search") == "slow" {
			close(began)
			<-gate
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(context.Background(), ":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func newTestService(t *testing.T) (*Service, *testServer, *Cache) {
	t.Helper()
	ts := startTestServer(t)
	cache := newTestCache(t)
	api := NewAPI(strings.TrimSuffix(ts.URL, "/")+"/api", logging.Discard())
	return NewService(api, cache, logging.Discard()), ts, cache
}
