package dispatch

import (
	"inventario/internal/core/entity"
	"inventario/internal/core/numerator"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/lifecycle"
)

const (
	StatusPending    entity.Status = "PENDING"
	StatusDispatched entity.Status = "DISPATCHED"
	StatusCancelled  entity.Status = "CANCELLED"
)

const (
	EventDispatch lifecycle.Event = "dispatch"
	EventCancel   lifecycle.Event = "cancel"
)

// DefaultPrefix is used for generated numbers (DES-2025-0001).
const DefaultPrefix = "DES"

// NewMachine builds the dispatch lifecycle. Dispatching decrements stock
// only when decrementStock is set.
func NewMachine(decrementStock bool) *lifecycle.Machine {
	var effects []lifecycle.Effect
	if decrementStock {
		effects = []lifecycle.Effect{lifecycle.EffectStockOut}
	}
	return lifecycle.New("dispatch note", StatusPending, StatusPending,
		lifecycle.Transition{
			From:    []entity.Status{StatusPending},
			Event:   EventDispatch,
			To:      StatusDispatched,
			Effects: effects,
		},
		lifecycle.Transition{
			From:  []entity.Status{StatusPending},
			Event: EventCancel,
			To:    StatusCancelled,
		},
	)
}

// Options are the configurable dispatch policies.
type Options struct {
	Prefix         string
	PriceRule      entity.PriceRule
	DecrementStock bool
}

// DefaultOptions: non-negative prices, no stock decrement.
func DefaultOptions() Options {
	return Options{Prefix: DefaultPrefix, PriceRule: entity.PriceNonNegative}
}

// NewKind describes dispatch notes for the document engine. Numbers supplied
// by the caller are kept; zero line prices default to the product price and
// every saved line is checked against current stock.
func NewKind(opts Options) documents.Kind {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if !opts.PriceRule.Valid() {
		opts.PriceRule = entity.PriceNonNegative
	}
	return documents.Kind{
		Type:                    documents.TypeDispatchNote,
		Scheme:                  numerator.NewScheme(string(documents.TypeDispatchNote), opts.Prefix, numerator.PeriodYear),
		CallerNumbers:           true,
		PriceRule:               opts.PriceRule,
		Machine:                 NewMachine(opts.DecrementStock),
		CheckStock:              true,
		DefaultPriceFromProduct: true,
	}
}
