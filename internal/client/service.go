package client

import (
	"context"
	"log/slog"

	"github.com/imrishuroy/go-catalogflow/internal/query"
	"github.com/imrishuroy/go-catalogflow/internal/records"
)

const categoriesKey = "all"

// listEntry is what the items namespace stores per parameter set.
type listEntry struct {
	Params query.Values `json:"params"`
	Page   records.Page `json:"page"`
}

// Service reads through the cache and invalidates the list cache after
// every successful mutation. Identical concurrent reads both go to the
// network.
type Service struct {
	api    *API
	cache  *Cache
	logger *slog.Logger
}

func NewService(api *API, cache *Cache, logger *slog.Logger) *Service {
	return &Service{api: api, cache: cache, logger: orDiscard(logger).With("component", "service")}
}

// FetchItems returns the page for v, from the cache when an entry for the
// same normalized parameters exists.
func (s *Service) FetchItems(ctx context.Context, v query.Values) (records.Page, error) {
	v = v.WithoutAllCategory()
	key := v.Key()

	var hit listEntry
	ok, err := s.cache.Get(ctx, NamespaceItems, key, &hit)
	if err != nil {
		s.logger.Warn("cache read failed", "error", err)
	}
	if ok {
		return hit.Page, nil
	}

	page, err := s.api.ListItems(ctx, v)
	if err != nil {
		return records.Page{}, err
	}
	if err := s.cache.Put(ctx, NamespaceItems, key, listEntry{Params: v, Page: page}); err != nil {
		s.logger.Warn("cache write failed", "error", err)
	}
	return page, nil
}

// FetchCategories returns the category list, cached until cleared.
func (s *Service) FetchCategories(ctx context.Context) ([]string, error) {
	var cats []string
	ok, err := s.cache.Get(ctx, NamespaceCategories, categoriesKey, &cats)
	if err != nil {
		s.logger.Warn("cache read failed", "error", err)
	}
	if ok {
		return cats, nil
	}

	cats, err = s.api.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, NamespaceCategories, categoriesKey, cats); err != nil {
		s.logger.Warn("cache write failed", "error", err)
	}
	return cats, nil
}

func (s *Service) GetItem(ctx context.Context, id int64) (*records.Record, error) {
	return s.api.GetItem(ctx, id)
}

func (s *Service) CreateItem(ctx context.Context, r records.Record) (*records.Record, error) {
	rec, err := s.api.CreateItem(ctx, r)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return rec, nil
}

func (s *Service) UpdateItem(ctx context.Context, id int64, patch records.Record) (*records.Record, error) {
	rec, err := s.api.UpdateItem(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return rec, nil
}

func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.api.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// invalidate drops the whole list cache. A failure leaves stale pages
// behind, so it is logged loudly but does not undo the mutation.
func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.ClearNamespace(ctx, NamespaceItems); err != nil {
		s.logger.Error("invalidate list cache", "error", err)
	}
}
