package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-catalogflow/internal/events"
	"github.com/imrishuroy/go-catalogflow/internal/logging"
	"github.com/imrishuroy/go-catalogflow/internal/records"
	"github.com/imrishuroy/go-catalogflow/internal/validation"
)

// HandlerConfig groups dependencies for the items handler.
type HandlerConfig struct {
	Store    records.Store
	Notifier events.Notifier // nil disables events
	Logger   *slog.Logger
}

var notFoundBody = gin.H{"message": "Item not found"}

// RegisterItemsRoutes registers the record API under /api.
func RegisterItemsRoutes(r *gin.Engine, cfg HandlerConfig) {
	h := &itemsHandler{
		store:    cfg.Store,
		notifier: cfg.Notifier,
		log:      cfg.Logger,
		v:        validation.New(),
	}
	if h.notifier == nil {
		h.notifier = events.Discard{}
	}
	if h.log == nil {
		h.log = logging.Discard()
	}
	h.log = h.log.With("component", "items")

	api := r.Group("/api")
	api.GET("/items", h.list)
	api.GET("/items/:id", h.get)
	api.POST("/items", h.create)
	api.PUT("/items/:id", h.update)
	api.DELETE("/items/:id", h.delete)
	api.GET("/categories", h.categories)
}

type itemsHandler struct {
	store    records.Store
	notifier events.Notifier
	log      *slog.Logger
	v        *validatorv10.Validate
}

func (h *itemsHandler) list(c *gin.Context) {
	var req validation.ListItemsRequest
	if err := validation.BindQueryAndValidate(c, &req, h.v); err != nil {
		return
	}
	all, err := h.store.List(c.Request.Context())
	if err != nil {
		h.internalError(c, "list items", err)
		return
	}
	c.JSON(http.StatusOK, records.Apply(all, req.Params()))
}

func (h *itemsHandler) get(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	rec, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, "get item", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *itemsHandler) create(c *gin.Context) {
	var req validation.ItemRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	ctx := c.Request.Context()
	rec, err := h.store.Create(ctx, req.Record())
	if err != nil {
		h.internalError(c, "create item", err)
		return
	}
	h.notify(ctx, events.KindCreated, rec.ID, rec.Category)
	c.JSON(http.StatusCreated, rec)
}

func (h *itemsHandler) update(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req validation.ItemRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	ctx := c.Request.Context()
	rec, err := h.store.Update(ctx, id, req.Record())
	if err != nil {
		h.storeError(c, "update item", err)
		return
	}
	h.notify(ctx, events.KindUpdated, rec.ID, rec.Category)
	c.JSON(http.StatusOK, rec)
}

func (h *itemsHandler) delete(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.store.Delete(ctx, id); err != nil {
		h.storeError(c, "delete item", err)
		return
	}
	h.notify(ctx, events.KindDeleted, id, "")
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

func (h *itemsHandler) categories(c *gin.Context) {
	cats, err := h.store.Categories(c.Request.Context())
	if err != nil {
		h.internalError(c, "list categories", err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

// itemID parses :id. A non-integer id cannot match a record, so it gets the
// same 404 as a missing one.
func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, notFoundBody)
		return 0, false
	}
	return id, true
}

func (h *itemsHandler) storeError(c *gin.Context, op string, err error) {
	if errors.Is(err, records.ErrNotFound) {
		c.JSON(http.StatusNotFound, notFoundBody)
		return
	}
	h.internalError(c, op, err)
}

func (h *itemsHandler) internalError(c *gin.Context, op string, err error) {
	h.log.Error(op+" failed", "error", err, "request_id", RequestIDFromContext(c.Request.Context()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}

// notify publishes a mutation event. The mutation already happened, so a
// delivery failure is only logged.
func (h *itemsHandler) notify(ctx context.Context, kind events.Kind, id int64, category string) {
	e := events.New(kind, id, category)
	e.RequestID = RequestIDFromContext(ctx)
	if err := h.notifier.Notify(ctx, e); err != nil {
		h.log.Warn("publish event failed", "kind", kind, "item_id", id, "error", err)
	}
}
