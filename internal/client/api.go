// Package client is the catalog client: an HTTP API client, a local SQLite
// read cache, form validation and a reducer-driven application state.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/imrishuroy/go-catalogflow/internal/logging"
	"github.com/imrishuroy/go-catalogflow/internal/query"
	"github.com/imrishuroy/go-catalogflow/internal/records"
)

// ErrNotFound is returned when the service answers 404.
var ErrNotFound = errors.New("item not found")

// NetworkError is a request that could not complete or came back with an
// error status other than 404.
type NetworkError struct {
	Method  string
	Path    string
	Status  int // 0 when no response arrived
	Message string
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// API is an HTTP client for the record service. It never retries.
type API struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewAPI creates a client for the service rooted at baseURL
// (for example http://localhost:8000/api).
func NewAPI(baseURL string, logger *slog.Logger) *API {
	return &API{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		Logger:     orDiscard(logger),
	}
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return logging.Discard()
	}
	return logger
}

func (a *API) log() *slog.Logger { return orDiscard(a.Logger) }

// itemPayload is the create/update body; the server assigns ids.
type itemPayload struct {
	Title       string  `json:"title,omitempty"`
	Category    string  `json:"category,omitempty"`
	Date        string  `json:"date,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Description string  `json:"description,omitempty"`
	Stock       int     `json:"stock,omitempty"`
	Rating      int     `json:"rating,omitempty"`
}

func payloadOf(r records.Record) itemPayload {
	return itemPayload{
		Title:       r.Title,
		Category:    r.Category,
		Date:        r.Date,
		Price:       r.Price,
		Description: r.Description,
		Stock:       r.Stock,
		Rating:      r.Rating,
	}
}

func (a *API) ListItems(ctx context.Context, v query.Values) (records.Page, error) {
	var page records.Page
	path := "/items"
	if q := v.Encode().Encode(); q != "" {
		path += "?" + q
	}
	err := a.do(ctx, http.MethodGet, path, nil, &page)
	if page.Items == nil {
		page.Items = []records.Record{}
	}
	return page, err
}

func (a *API) GetItem(ctx context.Context, id int64) (*records.Record, error) {
	var rec records.Record
	if err := a.do(ctx, http.MethodGet, itemPath(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (a *API) CreateItem(ctx context.Context, r records.Record) (*records.Record, error) {
	var rec records.Record
	if err := a.do(ctx, http.MethodPost, "/items", payloadOf(r), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (a *API) UpdateItem(ctx context.Context, id int64, patch records.Record) (*records.Record, error) {
	var rec records.Record
	if err := a.do(ctx, http.MethodPut, itemPath(id), payloadOf(patch), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (a *API) DeleteItem(ctx context.Context, id int64) error {
	return a.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
}

func (a *API) ListCategories(ctx context.Context) ([]string, error) {
	var cats []string
	if err := a.do(ctx, http.MethodGet, "/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func itemPath(id int64) string { return "/items/" + strconv.FormatInt(id, 10) }

// do performs one request and decodes a 2xx JSON body into out.
func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	a.log().Debug("HTTP request", "method", method, "path", path)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, Path: path, Status: resp.StatusCode, Err: err}
	}

	a.log().Debug("HTTP response", "status", resp.StatusCode, "bytes", len(respBody))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &NetworkError{Method: method, Path: path, Status: resp.StatusCode, Message: serverMessage(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &NetworkError{Method: method, Path: path, Status: resp.StatusCode, Err: fmt.Errorf("parse response: %w", err)}
	}
	return nil
}

// serverMessage pulls a human readable message out of an error body.
func serverMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Msg     string `json:"msg"`
	}
	if json.Unmarshal(body, &e) != nil {
		return strings.TrimSpace(string(body))
	}
	for _, s := range []string{e.Message, e.Msg, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}
