package order

import (
	"inventario/internal/core/entity"
	"inventario/internal/core/numerator"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/lifecycle"
)

const (
	StatusPending   entity.Status = "PENDING"
	StatusApproved  entity.Status = "APPROVED"
	StatusDelivered entity.Status = "DELIVERED"
	StatusCancelled entity.Status = "CANCELLED"
)

const (
	EventApprove lifecycle.Event = "approve"
	EventDeliver lifecycle.Event = "deliver"
	EventCancel  lifecycle.Event = "cancel"
)

// Machine is the order lifecycle. Delivery is the only stock effect.
var Machine = lifecycle.New("order", StatusPending, StatusPending,
	lifecycle.Transition{
		From:  []entity.Status{StatusPending},
		Event: EventApprove,
		To:    StatusApproved,
	},
	lifecycle.Transition{
		From:    []entity.Status{StatusApproved},
		Event:   EventDeliver,
		To:      StatusDelivered,
		Effects: []lifecycle.Effect{lifecycle.EffectStockIn},
	},
	lifecycle.Transition{
		From:  []entity.Status{StatusPending, StatusApproved},
		Event: EventCancel,
		To:    StatusCancelled,
	},
)

// Options are the configurable order policies.
type Options struct {
	PriceRule  entity.PriceRule
	CheckStock bool
}

// DefaultOptions: strictly positive prices, no stock check.
func DefaultOptions() Options {
	return Options{PriceRule: entity.PricePositive}
}

// NewKind describes orders for the document engine.
func NewKind(opts Options) documents.Kind {
	if !opts.PriceRule.Valid() {
		opts.PriceRule = entity.PricePositive
	}
	return documents.Kind{
		Type:       documents.TypeOrder,
		Scheme:     numerator.NewScheme(string(documents.TypeOrder), "ORD", numerator.PeriodYear),
		PriceRule:  opts.PriceRule,
		Machine:    Machine,
		CheckStock: opts.CheckStock,
	}
}
