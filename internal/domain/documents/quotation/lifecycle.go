package quotation

import (
	"inventario/internal/core/entity"
	"inventario/internal/core/numerator"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/lifecycle"
)

const (
	StatusDraft     entity.Status = "DRAFT"
	StatusSent      entity.Status = "SENT"
	StatusApproved  entity.Status = "APPROVED"
	StatusRejected  entity.Status = "REJECTED"
	StatusConverted entity.Status = "CONVERTED"
)

const (
	EventSend    lifecycle.Event = "send"
	EventApprove lifecycle.Event = "approve"
	EventReject  lifecycle.Event = "reject"
	// EventConvert is fired only by the Converter.
	EventConvert lifecycle.Event = "convert"
)

// Machine is the quotation lifecycle. Only DRAFT is editable.
var Machine = lifecycle.New("quotation", StatusDraft, StatusDraft,
	lifecycle.Transition{
		From:    []entity.Status{StatusDraft},
		Event:   EventSend,
		To:      StatusSent,
		Effects: []lifecycle.Effect{lifecycle.EffectStampSent},
	},
	lifecycle.Transition{
		From:    []entity.Status{StatusSent},
		Event:   EventApprove,
		To:      StatusApproved,
		Effects: []lifecycle.Effect{lifecycle.EffectStampApproved},
	},
	lifecycle.Transition{
		From:  []entity.Status{StatusSent},
		Event: EventReject,
		To:    StatusRejected,
	},
	lifecycle.Transition{
		From:     []entity.Status{StatusApproved},
		Event:    EventConvert,
		To:       StatusConverted,
		Internal: true,
	},
)

// Options are the configurable quotation policies.
type Options struct {
	PriceRule entity.PriceRule
}

// DefaultOptions: zero prices allowed, negative rejected.
func DefaultOptions() Options {
	return Options{PriceRule: entity.PriceNonNegative}
}

// NewKind describes quotations for the document engine.
func NewKind(opts Options) documents.Kind {
	if !opts.PriceRule.Valid() {
		opts.PriceRule = entity.PriceNonNegative
	}
	return documents.Kind{
		Type:      documents.TypeQuotation,
		Scheme:    numerator.NewScheme(string(documents.TypeQuotation), "COT", numerator.PeriodYear),
		PriceRule: opts.PriceRule,
		Machine:   Machine,
	}
}
