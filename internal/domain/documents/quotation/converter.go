package quotation

import (
	"context"
	"fmt"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
	"inventario/internal/core/tx"
	"inventario/internal/domain/audit"
	"inventario/internal/domain/documents"
	"inventario/internal/domain/documents/dispatch"
	"inventario/pkg/logger"
)

// Converter turns an approved quotation into a pending dispatch note.
type Converter struct {
	quotations *Service
	dispatches *dispatch.Service
	txManager  tx.Manager
	audit      audit.Recorder
}

// NewConverter creates a converter. rec may be nil.
func NewConverter(quotations *Service, dispatches *dispatch.Service, txManager tx.Manager, rec audit.Recorder) *Converter {
	if rec == nil {
		rec = audit.NopRecorder{}
	}
	return &Converter{
		quotations: quotations,
		dispatches: dispatches,
		txManager:  txManager,
		audit:      rec,
	}
}

// CanConvert loads the quotation and reports whether Convert would succeed.
func (c *Converter) CanConvert(ctx context.Context, id entity.ID) (bool, error) {
	q, err := c.quotations.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return q.CanConvert(), nil
}

// Convert creates the dispatch note, copies every line value-for-value, links
// it to the quotation and marks the quotation CONVERTED, all in one
// transaction. A quotation that is not approved or already linked yields
// CONVERSION_NOT_ALLOWED and nothing is written.
func (c *Converter) Convert(ctx context.Context, id entity.ID) (*dispatch.DispatchNote, error) {
	var note *dispatch.DispatchNote

	err := c.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := c.quotations.Lock(ctx, id)
		if err != nil {
			return err
		}
		if !q.CanConvert() {
			return notAllowed(q)
		}

		d := dispatch.New()
		d.Client = q.Client
		d.Notes = fmt.Sprintf("Generated from quotation %s", q.Number)
		d.Lines = make([]entity.LineItem, 0, len(q.Lines))
		for _, l := range q.Lines {
			d.Lines = append(d.Lines, entity.LineItem{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
			})
		}
		if err := c.dispatches.Create(ctx, d, documents.AsCopy()); err != nil {
			return fmt.Errorf("create dispatch note: %w", err)
		}

		q.DispatchNoteID = &d.ID
		if err := c.quotations.Fire(ctx, q, EventConvert); err != nil {
			return err
		}

		entry := audit.Entry{
			EntityType: string(documents.TypeQuotation),
			EntityID:   q.ID,
			Action:     audit.ActionConvert,
			Changes: map[string]any{
				"dispatchNoteId":     d.ID,
				"dispatchNoteNumber": d.Number,
				"lines":              len(d.Lines),
			},
		}
		audit.FillDefaults(ctx, &entry)
		if err := c.audit.Record(ctx, entry); err != nil {
			return fmt.Errorf("record audit: %w", err)
		}

		note = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "quotation converted",
		"quotation_id", id,
		"dispatch_note", note.Number,
		"total", note.Total.String())
	return note, nil
}

func notAllowed(q *Quotation) error {
	err := apperror.NewBusinessRule(apperror.CodeConversionNotAllowed,
		"Only an approved quotation without a dispatch note can be converted").
		WithDetail("status", string(q.Status))
	if q.DispatchNoteID != nil {
		err = err.WithDetail("dispatchNoteId", q.DispatchNoteID.String())
	}
	return err
}
