package replenishment

import (
	"context"
	"fmt"
	"time"

	appctx "inventario/internal/core/context"
	"inventario/internal/core/entity"
	"inventario/internal/domain/catalogs/product"
	"inventario/internal/domain/ledger"
	"inventario/pkg/logger"
)

// Request is a replenishment request for one product.
type Request struct {
	ProductID    entity.ID `json:"productId"`
	Code         string    `json:"code"`
	Description  string    `json:"description"`
	Supplier     string    `json:"supplier,omitempty"`
	CurrentStock int64     `json:"currentStock"`
	MinStock     int64     `json:"minStock"`
	MaxStock     int64     `json:"maxStock"`
	Quantity     int64     `json:"quantity"`
	RequestedBy  string    `json:"requestedBy,omitempty"`
	RequestedAt  time.Time `json:"requestedAt"`
}

// Notifier delivers a request to whoever restocks.
type Notifier interface {
	Notify(ctx context.Context, req Request) error
}

// LogNotifier writes requests to the log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, req Request) error {
	logger.Info(ctx, "replenishment requested",
		"product_id", req.ProductID,
		"code", req.Code,
		"current_stock", req.CurrentStock,
		"quantity", req.Quantity)
	return nil
}

// ProductSource loads products.
type ProductSource interface {
	GetByID(ctx context.Context, id entity.ID) (*product.Product, error)
}

// Service builds and sends replenishment requests.
type Service struct {
	products ProductSource
	policy   *Policy
	notifier Notifier
}

// NewService creates the service. A nil notifier logs requests.
func NewService(products ProductSource, policy *Policy, notifier Notifier) *Service {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Service{products: products, policy: policy, notifier: notifier}
}

// Request computes the suggested quantity for productID and notifies.
func (s *Service) Request(ctx context.Context, productID entity.ID) (*Request, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	qty, err := s.policy.Quantity(p.CurrentStock, p.MinStock, p.MaxStock)
	if err != nil {
		return nil, err
	}

	req := Request{
		ProductID:    p.ID,
		Code:         p.Code,
		Description:  p.Description,
		Supplier:     p.Supplier,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		MaxStock:     p.MaxStock,
		Quantity:     qty,
		RequestedBy:  appctx.GetUserID(ctx),
		RequestedAt:  time.Now().UTC(),
	}
	if err := s.notifier.Notify(ctx, req); err != nil {
		return nil, fmt.Errorf("notify replenishment: %w", err)
	}
	return &req, nil
}

// LowStockSource lists products below their minimum.
type LowStockSource interface {
	LowStock(ctx context.Context, limit int) ([]ledger.LowStockItem, error)
}

// Sweep requests replenishment for every product currently below its
// minimum, most critical first. A failing product is logged and skipped.
func (s *Service) Sweep(ctx context.Context, source LowStockSource, limit int) ([]Request, error) {
	items, err := source.LowStock(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}

	sent := make([]Request, 0, len(items))
	for _, item := range items {
		req, err := s.Request(ctx, item.ProductID)
		if err != nil {
			logger.Warn(ctx, "replenishment request failed",
				"product_id", item.ProductID,
				"code", item.Code,
				"error", err)
			continue
		}
		sent = append(sent, *req)
	}
	return sent, nil
}
