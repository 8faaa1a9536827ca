package client

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/imrishuroy/go-catalogflow/internal/query"
	"github.com/imrishuroy/go-catalogflow/internal/records"
)

// App drives the client: it turns user intents into state transitions and
// service calls. Every failure ends up as State.Error; nothing is fatal.
type App struct {
	svc    *Service
	store  *Store
	logger *slog.Logger
	gen    atomic.Uint64
}

func NewApp(svc *Service, store *Store, logger *slog.Logger) *App {
	return &App{svc: svc, store: store, logger: orDiscard(logger)}
}

// State returns the current state.
func (a *App) State() State { return a.store.State() }

// Load merges overrides into the query parameters and fetches that page.
// Only the most recent Load may write its result: a response that arrives
// after a newer Load started is dropped.
func (a *App) Load(ctx context.Context, overrides map[string]string) error {
	v := query.Normalize(overrides)
	if overrides[query.KeyCategory] == query.CategoryAll {
		// Normalize drops the sentinel; state keeps it so it replaces a
		// previously selected category. FetchItems strips it again.
		v[query.KeyCategory] = query.CategoryAll
	}
	a.store.Dispatch(SetQueryParams{Params: v})
	params := a.store.State().Params

	gen := a.gen.Add(1)
	a.store.Dispatch(FetchStarted{})
	defer func() {
		if a.gen.Load() == gen {
			a.store.Dispatch(FetchFinished{})
		}
	}()

	page, err := a.svc.FetchItems(ctx, params)
	if a.gen.Load() != gen {
		a.logger.Debug("discarding stale response", "generation", gen)
		return nil
	}
	if err != nil {
		a.store.Dispatch(FetchFailed{Message: Message(err)})
		return err
	}
	a.store.Dispatch(FetchSucceeded{Page: page})
	return nil
}

// LoadCategories fills State.Categories.
func (a *App) LoadCategories(ctx context.Context) error {
	cats, err := a.svc.FetchCategories(ctx)
	if err != nil {
		a.store.Dispatch(SetError{Message: Message(err)})
		return err
	}
	a.store.Dispatch(SetCategories{Categories: cats})
	return nil
}

// Open fetches one record into the editing slot.
func (a *App) Open(ctx context.Context, id int64) (*records.Record, error) {
	rec, err := a.svc.GetItem(ctx, id)
	if err != nil {
		a.store.Dispatch(SetError{Message: Message(err)})
		return nil, err
	}
	a.store.Dispatch(SetItemEditing{Item: *rec})
	return rec, nil
}

// Save validates f and creates a record (id 0) or updates record id. An
// invalid form returns a *FormError without touching the service.
func (a *App) Save(ctx context.Context, id int64, f ItemForm) (*records.Record, error) {
	rec, err := ValidateForm(f)
	if err != nil {
		return nil, err
	}

	a.store.Dispatch(SetMutateLoading{Loading: true})
	defer a.store.Dispatch(SetMutateLoading{Loading: false})

	var saved *records.Record
	if id == 0 {
		saved, err = a.svc.CreateItem(ctx, rec)
	} else {
		saved, err = a.svc.UpdateItem(ctx, id, rec)
	}
	if err != nil {
		a.store.Dispatch(SetError{Message: Message(err)})
		return nil, err
	}

	if id == 0 {
		a.store.Dispatch(ItemAdded{})
	} else {
		a.store.Dispatch(ItemEdited{})
	}
	a.store.Dispatch(ResetItemEditing{})
	a.store.Dispatch(SetOpenDialog{Open: false})
	return saved, nil
}

// Remove deletes record id.
func (a *App) Remove(ctx context.Context, id int64) error {
	a.store.Dispatch(SetMutateLoading{Loading: true})
	defer a.store.Dispatch(SetMutateLoading{Loading: false})

	if err := a.svc.DeleteItem(ctx, id); err != nil {
		a.store.Dispatch(SetError{Message: Message(err)})
		return err
	}
	a.store.Dispatch(ItemDeleted{})
	return nil
}

// Message renders err the way it is shown to the user.
func Message(err error) string {
	var netErr *NetworkError
	var formErr *FormError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "Item not found"
	case errors.As(err, &formErr):
		return formErr.Error()
	case errors.As(err, &netErr):
		return "Network error: " + netErr.Error()
	default:
		return err.Error()
	}
}
