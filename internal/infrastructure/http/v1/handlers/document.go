package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"inventario/internal/core/entity"
	"inventario/internal/domain"
	"inventario/internal/domain/audit"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/lifecycle"
	"inventario/internal/infrastructure/http/v1/dto"
)

// DocumentService is the document engine surface used over HTTP.
// Every per-type service satisfies it through its embedded documents.Manager.
type DocumentService[T documents.Doc] interface {
	Create(ctx context.Context, doc T, opts ...documents.CreateOption) error
	Get(ctx context.Context, id entity.ID) (T, error)
	List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[T], error)
	Update(ctx context.Context, doc T) error
	Delete(ctx context.Context, id entity.ID) error
	SaveItem(ctx context.Context, documentID entity.ID, item entity.LineItem) (T, error)
	DeleteItem(ctx context.Context, documentID, itemID entity.ID) (T, error)
	Transition(ctx context.Context, id entity.ID, event lifecycle.Event) (T, error)
	AllowedEvents(doc T) []lifecycle.Event
	Machine() *lifecycle.Machine
}

// HistoryReader reads the audit trail of one document.
type HistoryReader interface {
	History(ctx context.Context, entityType string, entityID entity.ID, limit int) ([]audit.Entry, error)
}

// Applier is a request body that writes itself onto a document.
type Applier[T any] interface {
	Apply(doc T)
}

// BaseDocumentHandler provides generic HTTP handlers for one document type.
type BaseDocumentHandler[T documents.Doc, R Applier[T]] struct {
	*BaseHandler
	service    DocumentService[T]
	newDoc     func() T
	entityType documents.Type
	history    HistoryReader
}

// BaseDocumentHandlerConfig configures the document handler.
type BaseDocumentHandlerConfig[T documents.Doc] struct {
	Service DocumentService[T]
	New     func() T
	Type    documents.Type
	History HistoryReader // optional
}

// NewBaseDocumentHandler creates a new base document handler.
func NewBaseDocumentHandler[T documents.Doc, R Applier[T]](
	base *BaseHandler,
	cfg BaseDocumentHandlerConfig[T],
) *BaseDocumentHandler[T, R] {
	return &BaseDocumentHandler[T, R]{
		BaseHandler: base,
		service:     cfg.Service,
		newDoc:      cfg.New,
		entityType:  cfg.Type,
		history:     cfg.History,
	}
}

// List handles GET /{documents}
func (h *BaseDocumentHandler[T, R]) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.service.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// Get handles GET /{documents}/:id
func (h *BaseDocumentHandler[T, R]) Get(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Get(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Create handles POST /{documents}
func (h *BaseDocumentHandler[T, R]) Create(c *gin.Context) {
	var req R
	if !h.BindJSON(c, &req) {
		return
	}

	doc := h.newDoc()
	req.Apply(doc)

	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, doc)
}

// Update handles PUT /{documents}/:id
func (h *BaseDocumentHandler[T, R]) Update(c *gin.Context) {
	ctx := c.Request.Context()

	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req R
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Get(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	// The stored version is the default; a version in the body overrides it.
	doc.Header().Version = 0
	req.Apply(doc)

	if err := h.service.Update(ctx, doc); err != nil {
		h.Error(c, err)
		return
	}

	updated, err := h.service.Get(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, updated)
}

// Delete handles DELETE /{documents}/:id
func (h *BaseDocumentHandler[T, R]) Delete(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// SaveItem handles POST /{documents}/:id/items and PUT /{documents}/:id/items/:itemId
func (h *BaseDocumentHandler[T, R]) SaveItem(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.LineRequest
	if !h.BindJSON(c, &req) {
		return
	}
	item := req.ToLine()
	if c.Param("itemId") != "" {
		itemID, ok := h.ParseID(c, "itemId")
		if !ok {
			return
		}
		item.ID = itemID
	}

	doc, err := h.service.SaveItem(c.Request.Context(), docID, item)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// DeleteItem handles DELETE /{documents}/:id/items/:itemId
func (h *BaseDocumentHandler[T, R]) DeleteItem(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.ParseID(c, "itemId")
	if !ok {
		return
	}

	doc, err := h.service.DeleteItem(c.Request.Context(), docID, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Transition handles POST /{documents}/:id/transitions/:event
func (h *BaseDocumentHandler[T, R]) Transition(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Transition(c.Request.Context(), docID, lifecycle.Event(c.Param("event")))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Events handles GET /{documents}/:id/events
func (h *BaseDocumentHandler[T, R]) Events(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Get(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	status := doc.Header().Status
	events := h.service.AllowedEvents(doc)
	resp := dto.EventsResponse{
		Status:   status,
		Editable: h.service.Machine().IsEditable(status),
		Events:   make([]string, 0, len(events)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, string(e))
	}
	h.OK(c, resp)
}

// History handles GET /{documents}/:id/history
func (h *BaseDocumentHandler[T, R]) History(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if h.history == nil {
		h.OK(c, []audit.Entry{})
		return
	}

	entries, err := h.history.History(c.Request.Context(), string(h.entityType), docID, h.ParseIntQuery(c, "limit", 50))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entries)
}
