package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"inventario/internal/core/entity"
	"inventario/internal/domain/documents/dispatch"
	"inventario/internal/infrastructure/http/v1/dto"
)

// QuotationConverter turns approved quotations into dispatch notes.
type QuotationConverter interface {
	CanConvert(ctx context.Context, id entity.ID) (bool, error)
	Convert(ctx context.Context, id entity.ID) (*dispatch.DispatchNote, error)
}

// ConversionHandler exposes quotation conversion.
type ConversionHandler struct {
	*BaseHandler
	converter QuotationConverter
}

// NewConversionHandler creates a new conversion handler.
func NewConversionHandler(base *BaseHandler, converter QuotationConverter) *ConversionHandler {
	return &ConversionHandler{BaseHandler: base, converter: converter}
}

// CanConvert handles GET /quotations/:id/can-convert
func (h *ConversionHandler) CanConvert(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	can, err := h.converter.CanConvert(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CanConvertResponse{CanConvert: can})
}

// Convert handles POST /quotations/:id/convert. The response is the new dispatch note.
func (h *ConversionHandler) Convert(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	note, err := h.converter.Convert(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, note)
}
