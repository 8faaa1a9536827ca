package client

import (
	"sync"

	"github.com/imrishuroy/go-catalogflow/internal/query"
	"github.com/imrishuroy/go-catalogflow/internal/records"
)

// ItemAction names the last completed mutation, for a one-shot notice.
type ItemAction string

const (
	ActionNone    ItemAction = ""
	ActionAdded   ItemAction = "added"
	ActionEdited  ItemAction = "edited"
	ActionDeleted ItemAction = "deleted"
)

// State is the whole client application state. It changes only through
// Reduce.
type State struct {
	Params        query.Values
	Page          records.Page
	Categories    []string
	Loading       bool
	MutateLoading bool
	OpenDialog    bool
	Editing       *records.Record
	LastAction    ItemAction
	Error         string
}

// InitialState is the state of a fresh client.
func InitialState() State {
	return State{
		Params: query.DefaultValues(),
		Page:   records.Page{Items: []records.Record{}},
	}
}

// Action is a named state transition.
type Action interface{ action() }

type (
	// SetQueryParams overlays Params onto the current parameters.
	SetQueryParams   struct{ Params query.Values }
	SetMutateLoading struct{ Loading bool }
	SetOpenDialog    struct{ Open bool }
	SetItemEditing   struct{ Item records.Record }
	ResetItemEditing struct{}
	ItemAdded        struct{}
	ItemEdited       struct{}
	ItemDeleted      struct{}
	ResetItemAction  struct{}
	SetCategories    struct{ Categories []string }
	FetchStarted     struct{}
	FetchSucceeded   struct{ Page records.Page }
	// FetchFailed keeps the previous page.
	FetchFailed struct{ Message string }
	// FetchFinished clears the loading flag whatever the outcome.
	FetchFinished struct{}
	SetError      struct{ Message string }
)

func (SetQueryParams) action()   {}
func (SetMutateLoading) action() {}
func (SetOpenDialog) action()    {}
func (SetItemEditing) action()   {}
func (ResetItemEditing) action() {}
func (ItemAdded) action()        {}
func (ItemEdited) action()       {}
func (ItemDeleted) action()      {}
func (ResetItemAction) action()  {}
func (SetCategories) action()    {}
func (FetchStarted) action()     {}
func (FetchSucceeded) action()   {}
func (FetchFailed) action()      {}
func (FetchFinished) action()    {}
func (SetError) action()         {}

// Reduce returns the state after a. It never mutates s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetQueryParams:
		s.Params = s.Params.Merge(a.Params)
	case SetMutateLoading:
		s.MutateLoading = a.Loading
	case SetOpenDialog:
		s.OpenDialog = a.Open
	case SetItemEditing:
		item := a.Item
		s.Editing = &item
	case ResetItemEditing:
		s.Editing = nil
	case ItemAdded:
		s.LastAction = ActionAdded
	case ItemEdited:
		s.LastAction = ActionEdited
	case ItemDeleted:
		s.LastAction = ActionDeleted
	case ResetItemAction:
		s.LastAction = ActionNone
	case SetCategories:
		s.Categories = append([]string(nil), a.Categories...)
	case FetchStarted:
		s.Loading = true
		s.Error = ""
	case FetchSucceeded:
		s.Page = a.Page
		s.Error = ""
	case FetchFailed:
		s.Error = a.Message
	case FetchFinished:
		s.Loading = false
	case SetError:
		s.Error = a.Message
	}
	return s
}

// Store holds the current State.
type Store struct {
	mu    sync.Mutex
	state State
}

func NewStore(initial State) *Store {
	return &Store{state: initial}
}

// Dispatch applies a and returns the new state.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, a)
	return s.state
}

// State returns a snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
