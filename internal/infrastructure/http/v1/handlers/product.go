package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"inventario/internal/core/entity"
	"inventario/internal/domain"
	"inventario/internal/domain/catalogs/product"
	"inventario/internal/domain/ledger"
	"inventario/internal/domain/replenishment"
	"inventario/internal/infrastructure/http/v1/dto"
)

// ProductService is the product catalog surface used over HTTP.
type ProductService interface {
	Create(ctx context.Context, p *product.Product) error
	GetByID(ctx context.Context, id entity.ID) (*product.Product, error)
	Update(ctx context.Context, p *product.Product) error
	List(ctx context.Context, filter product.ListFilter) (domain.ListResult[*product.Product], error)
	GetPrice(ctx context.Context, id entity.ID) (*product.Price, error)
}

// StockService reads the stock ledger.
type StockService interface {
	LowStock(ctx context.Context, limit int) ([]ledger.LowStockItem, error)
	Movements(ctx context.Context, filter ledger.MovementFilter) ([]ledger.Movement, error)
}

// Replenisher raises replenishment requests.
type Replenisher interface {
	Request(ctx context.Context, productID entity.ID) (*replenishment.Request, error)
}

// ProductHandler handles product catalog and stock queries.
type ProductHandler struct {
	*BaseHandler
	products      ProductService
	stock         StockService
	replenishment Replenisher
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, products ProductService, stock StockService, rep Replenisher) *ProductHandler {
	return &ProductHandler{
		BaseHandler:   base,
		products:      products,
		stock:         stock,
		replenishment: rep,
	}
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var q dto.ProductListQuery
	if !h.BindQuery(c, &q) {
		return
	}

	result, err := h.products.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromListResult(result))
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := req.ToProduct()
	if err := h.products.Create(c.Request.Context(), p); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, p)
}

// Get handles GET /products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Update handles PUT /products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.products.GetByID(ctx, id)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.Apply(p)

	if err := h.products.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// Price handles GET /products/:id/price
func (h *ProductHandler) Price(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	price, err := h.products.GetPrice(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, price)
}

// LowStock handles GET /products/low-stock?limit=
func (h *ProductHandler) LowStock(c *gin.Context) {
	items, err := h.stock.LowStock(c.Request.Context(), h.ParseIntQuery(c, "limit", 0))
	if err != nil {
		h.Error(c, err)
		return
	}
	if items == nil {
		items = []ledger.LowStockItem{}
	}
	h.OK(c, items)
}

// Movements handles GET /products/:id/movements
func (h *ProductHandler) Movements(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var q dto.MovementQuery
	if !h.BindQuery(c, &q) {
		return
	}

	movements, err := h.stock.Movements(c.Request.Context(), q.ToFilter(id))
	if err != nil {
		h.Error(c, err)
		return
	}
	if movements == nil {
		movements = []ledger.Movement{}
	}
	h.OK(c, movements)
}

// Replenish handles POST /products/:id/replenishment
func (h *ProductHandler) Replenish(c *gin.Context) {
	id, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	req, err := h.replenishment.Request(c.Request.Context(), id)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, req)
}
