package documents

import (
	"context"
	"fmt"
	"slices"
	"time"

	"inventario/internal/core/apperror"
	appctx "inventario/internal/core/context"
	"inventario/internal/core/entity"
	"inventario/internal/core/numerator"
	"inventario/internal/core/tx"
	"inventario/internal/domain"
	"inventario/internal/domain/audit"
	"inventario/internal/domain/ledger"
	"inventario/internal/domain/lifecycle"
	"inventario/pkg/logger"
)

// SystemFieldKeeper is implemented by documents whose type-specific fields
// are owned by the engine (links, timestamps) and must survive a caller update.
type SystemFieldKeeper interface {
	KeepSystemFields(stored Doc)
}

// Config wires a Manager.
type Config[T Doc] struct {
	Kind      Kind
	Repo      Repository[T]
	TxManager tx.Manager
	Numerator numerator.Generator
	Ledger    Ledger
	Prices    PriceSource    // required when Kind.DefaultPriceFromProduct
	Audit     audit.Recorder // optional
	Now       func() time.Time
}

// Manager runs the shared document operations for one document type.
type Manager[T Doc] struct {
	kind      Kind
	repo      Repository[T]
	txManager tx.Manager
	numerator numerator.Generator
	ledger    Ledger
	prices    PriceSource
	audit     audit.Recorder
	hooks     *domain.HookRegistry[T]
	now       func() time.Time
}

// NewManager creates a document manager.
func NewManager[T Doc](cfg Config[T]) *Manager[T] {
	m := &Manager[T]{
		kind:      cfg.Kind,
		repo:      cfg.Repo,
		txManager: cfg.TxManager,
		numerator: cfg.Numerator,
		ledger:    cfg.Ledger,
		prices:    cfg.Prices,
		audit:     cfg.Audit,
		hooks:     domain.NewHookRegistry[T](),
		now:       cfg.Now,
	}
	if m.audit == nil {
		m.audit = audit.NopRecorder{}
	}
	if m.now == nil {
		m.now = func() time.Time { return time.Now().UTC() }
	}
	return m
}

// Kind returns the static description of the managed type.
func (m *Manager[T]) Kind() Kind { return m.kind }

// Machine returns the lifecycle table.
func (m *Manager[T]) Machine() *lifecycle.Machine { return m.kind.Machine }

// Hooks returns the hook registry for registering callbacks.
func (m *Manager[T]) Hooks() *domain.HookRegistry[T] { return m.hooks }

func (m *Manager[T]) name() string { return m.kind.Machine.Document() }

// CreateOption adjusts a single Create call.
type CreateOption func(*createOptions)

type createOptions struct {
	copied bool
}

// AsCopy marks lines copied value-for-value from another document: unit
// prices are kept as given and stock is not checked.
func AsCopy() CreateOption {
	return func(o *createOptions) { o.copied = true }
}

// Create validates doc, assigns its number and persists header and lines in
// one transaction. The number is drawn inside that transaction.
func (m *Manager[T]) Create(ctx context.Context, doc T, opts ...CreateOption) error {
	var co createOptions
	for _, opt := range opts {
		opt(&co)
	}

	h := doc.Header()
	now := m.now()
	if h.ID == (entity.ID{}) {
		h.ID = entity.NewID()
	}
	h.Version = 1
	h.CreatedAt, h.UpdatedAt = now, now
	h.Status = m.kind.Machine.Initial()
	if !m.kind.CallerNumbers {
		h.Number = ""
	}
	audit.EnrichCreatedBy(ctx, &h.CreatedBy)

	if err := m.hooks.Run(ctx, domain.BeforeCreate, doc); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if cv, ok := any(doc).(CreateValidator); ok {
		if err := cv.ValidateCreate(ctx, now); err != nil {
			return err
		}
	}

	// The transaction may be retried; a number drawn in a rolled-back attempt
	// must be drawn again under the new attempt's lock.
	callerNumber := h.Number
	err := m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		h.Number = callerNumber
		if err := m.prepareLines(ctx, doc, !co.copied); err != nil {
			return err
		}
		if h.Number == "" {
			number, err := m.numerator.Next(ctx, m.kind.Scheme, now)
			if err != nil {
				return fmt.Errorf("generate %s number: %w", m.name(), err)
			}
			h.Number = number
		}
		if err := m.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create %s: %w", m.name(), err)
		}
		return m.record(ctx, h.ID, audit.ActionCreate, map[string]any{
			"number": h.Number,
			"status": h.Status,
			"total":  h.Total.String(),
			"lines":  len(*doc.LineItems()),
		})
	})
	if err != nil {
		return err
	}

	if err := m.hooks.Run(ctx, domain.AfterCreate, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "document", m.name(), "error", err)
	}
	logger.Info(ctx, "document created",
		"document", m.name(),
		"id", h.ID,
		"number", h.Number,
		"total", h.Total.String())
	return nil
}

// Get loads a document with its lines.
func (m *Manager[T]) Get(ctx context.Context, id entity.ID) (T, error) {
	return m.repo.GetByID(ctx, id)
}

// Lock loads a document with its header row locked. Must run inside a transaction.
func (m *Manager[T]) Lock(ctx context.Context, id entity.ID) (T, error) {
	return m.repo.GetForUpdate(ctx, id)
}

// List returns a page of documents. Filtering by a status the lifecycle
// never mentions is a validation error.
func (m *Manager[T]) List(ctx context.Context, filter ListFilter) (domain.ListResult[T], error) {
	if len(filter.Status) > 0 {
		known := m.kind.Machine.States()
		for _, s := range filter.Status {
			if !slices.Contains(known, s) {
				return domain.ListResult[T]{}, apperror.NewValidation("Unknown "+m.name()+" status").
					WithDetail("field", "status").
					WithDetail("value", string(s))
			}
		}
	}
	filter.Normalize()
	return m.repo.List(ctx, filter)
}

// Update replaces the editable fields and the line set of a document that is
// still in its editable status. Number, status and creator never change here.
// A zero version skips the optimistic check.
func (m *Manager[T]) Update(ctx context.Context, doc T) error {
	h := doc.Header()

	if err := m.hooks.Run(ctx, domain.BeforeUpdate, doc); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	err := m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		stored, err := m.repo.GetForUpdate(ctx, h.ID)
		if err != nil {
			return err
		}
		sh := stored.Header()
		if err := m.kind.Machine.CheckEditable(sh.Status); err != nil {
			return err
		}
		if h.Version != 0 && h.Version != sh.Version {
			return apperror.NewConcurrentModification(m.name(), h.ID.String())
		}

		h.Version = sh.Version
		h.Number = sh.Number
		h.Status = sh.Status
		h.CreatedAt = sh.CreatedAt
		h.CreatedBy = sh.CreatedBy
		h.UpdatedAt = m.now()
		if keeper, ok := any(doc).(SystemFieldKeeper); ok {
			keeper.KeepSystemFields(stored)
		}

		if err := m.prepareLines(ctx, doc, true); err != nil {
			return err
		}
		if err := m.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update %s: %w", m.name(), err)
		}
		if err := m.repo.ReplaceLines(ctx, h.ID, *doc.LineItems()); err != nil {
			return fmt.Errorf("save %s lines: %w", m.name(), err)
		}
		return m.record(ctx, h.ID, audit.ActionUpdate, map[string]any{
			"total": map[string]any{"old": sh.Total.String(), "new": h.Total.String()},
			"lines": len(*doc.LineItems()),
		})
	})
	if err != nil {
		return err
	}

	if err := m.hooks.Run(ctx, domain.AfterUpdate, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "document", m.name(), "error", err)
	}
	return nil
}

// Delete removes a document that is still in its editable status.
func (m *Manager[T]) Delete(ctx context.Context, id entity.ID) error {
	var deleted T
	err := m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		stored, err := m.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		sh := stored.Header()
		if err := m.kind.Machine.CheckEditable(sh.Status); err != nil {
			return err
		}
		if err := m.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete %s: %w", m.name(), err)
		}
		deleted = stored
		return m.record(ctx, id, audit.ActionDelete, map[string]any{"number": sh.Number})
	})
	if err != nil {
		return err
	}

	if err := m.hooks.Run(ctx, domain.AfterDelete, deleted); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "document", m.name(), "error", err)
	}
	return nil
}

// SaveItem adds a line, or replaces the line with the same id, and persists
// the recomputed total in the same transaction.
func (m *Manager[T]) SaveItem(ctx context.Context, documentID entity.ID, item entity.LineItem) (T, error) {
	return m.mutateLines(ctx, documentID, func(lines []entity.LineItem) ([]entity.LineItem, error) {
		if item.ID != (entity.ID{}) {
			for i := range lines {
				if lines[i].ID == item.ID {
					lines[i] = item
					return lines, nil
				}
			}
			return nil, apperror.NewNotFound("line item", item.ID.String())
		}
		item.ID = entity.NewID()
		return append(lines, item), nil
	})
}

// DeleteItem removes one line and persists the recomputed total.
func (m *Manager[T]) DeleteItem(ctx context.Context, documentID, itemID entity.ID) (T, error) {
	return m.mutateLines(ctx, documentID, func(lines []entity.LineItem) ([]entity.LineItem, error) {
		idx := slices.IndexFunc(lines, func(l entity.LineItem) bool { return l.ID == itemID })
		if idx < 0 {
			return nil, apperror.NewNotFound("line item", itemID.String())
		}
		return slices.Delete(lines, idx, idx+1), nil
	})
}

func (m *Manager[T]) mutateLines(
	ctx context.Context,
	documentID entity.ID,
	mutate func([]entity.LineItem) ([]entity.LineItem, error),
) (T, error) {
	var out T
	err := m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := m.repo.GetForUpdate(ctx, documentID)
		if err != nil {
			return err
		}
		h := doc.Header()
		if err := m.kind.Machine.CheckEditable(h.Status); err != nil {
			return err
		}

		lines := doc.LineItems()
		oldTotal := h.Total
		updated, err := mutate(*lines)
		if err != nil {
			return err
		}
		*lines = updated

		if err := m.prepareLines(ctx, doc, true); err != nil {
			return err
		}
		if err := m.repo.ReplaceLines(ctx, documentID, *lines); err != nil {
			return fmt.Errorf("save %s lines: %w", m.name(), err)
		}
		h.UpdatedAt = m.now()
		if err := m.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update %s total: %w", m.name(), err)
		}
		out = doc
		return m.record(ctx, documentID, audit.ActionUpdate, map[string]any{
			"total": map[string]any{"old": oldTotal.String(), "new": h.Total.String()},
			"lines": len(*lines),
		})
	})
	return out, err
}

// Transition fires a caller-visible event. Illegal events are rejected with
// ILLEGAL_TRANSITION and the document is left unchanged.
func (m *Manager[T]) Transition(ctx context.Context, id entity.ID, event lifecycle.Event) (T, error) {
	var out T
	err := m.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		doc, err := m.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		t, err := m.kind.Machine.FirePublic(doc.Header().Status, event)
		if err != nil {
			return err
		}
		if err := m.apply(ctx, doc, event, t); err != nil {
			return err
		}
		out = doc
		return nil
	})
	if err != nil {
		return out, err
	}

	if err := m.hooks.Run(ctx, domain.AfterTransition, out); err != nil {
		logger.Warn(ctx, "after-transition hook failed", "document", m.name(), "error", err)
	}
	return out, nil
}

// Fire applies any event, internal ones included, to a document the caller
// already locked inside its own transaction.
func (m *Manager[T]) Fire(ctx context.Context, doc T, event lifecycle.Event) error {
	t, err := m.kind.Machine.Fire(doc.Header().Status, event)
	if err != nil {
		return err
	}
	return m.apply(ctx, doc, event, t)
}

// AllowedEvents lists the events a caller may fire on doc.
func (m *Manager[T]) AllowedEvents(doc T) []lifecycle.Event {
	return m.kind.Machine.AllowedEvents(doc.Header().Status)
}

func (m *Manager[T]) apply(ctx context.Context, doc T, event lifecycle.Event, t lifecycle.Transition) error {
	h := doc.Header()
	from := h.Status
	now := m.now()

	for _, effect := range t.Effects {
		switch effect {
		case lifecycle.EffectStockIn:
			if err := m.ledger.Post(ctx, m.movements(ctx, doc, ledger.DirectionIn)); err != nil {
				return err
			}
		case lifecycle.EffectStockOut:
			if err := m.ledger.Post(ctx, m.movements(ctx, doc, ledger.DirectionOut)); err != nil {
				return err
			}
		default:
			if applier, ok := any(doc).(EffectApplier); ok {
				applier.ApplyEffect(effect, now)
			}
		}
	}

	h.Status = t.To
	h.UpdatedAt = now
	if err := m.repo.Update(ctx, doc); err != nil {
		return fmt.Errorf("update %s status: %w", m.name(), err)
	}

	logger.Info(ctx, "document transitioned",
		"document", m.name(),
		"number", h.Number,
		"event", event,
		"from", from,
		"to", t.To)

	return m.record(ctx, h.ID, audit.ActionTransition, map[string]any{
		"event":   event,
		"from":    from,
		"to":      t.To,
		"effects": t.Effects,
	})
}

func (m *Manager[T]) movements(ctx context.Context, doc T, dir ledger.Direction) []ledger.Movement {
	h := doc.Header()
	docID := h.ID
	actor := appctx.GetUserID(ctx)
	if actor == "" {
		actor = h.CreatedBy
	}

	lines := *doc.LineItems()
	out := make([]ledger.Movement, 0, len(lines))
	for _, l := range lines {
		out = append(out, ledger.Movement{
			ProductID:       l.ProductID,
			Direction:       dir,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DocumentType:    string(m.kind.Type),
			DocumentID:      &docID,
			ReferenceNumber: h.Number,
			Notes:           h.Notes,
			CreatedBy:       actor,
		})
	}
	return out
}

// prepareLines validates every line and recomputes subtotals and total.
// With policies set it also defaults zero prices and checks stock when the
// type requires it.
func (m *Manager[T]) prepareLines(ctx context.Context, doc T, policies bool) error {
	lines := *doc.LineItems()
	requested := make(map[entity.ID]int64)
	var order []entity.ID

	for i := range lines {
		l := &lines[i]
		l.LineNo = i + 1
		if policies && m.kind.DefaultPriceFromProduct && m.prices != nil && l.UnitPrice.IsZero() && l.ProductID != (entity.ID{}) {
			price, err := m.prices.UnitPrice(ctx, l.ProductID)
			if err != nil {
				if apperror.IsNotFound(err) {
					return apperror.NewValidation("product does not exist").
						WithDetail("field", "productId").
						WithDetail("line", l.LineNo)
				}
				return fmt.Errorf("resolve price: %w", err)
			}
			l.UnitPrice = price
		}
		if err := l.Validate(ctx, m.kind.PriceRule); err != nil {
			return err
		}
		if _, seen := requested[l.ProductID]; !seen {
			order = append(order, l.ProductID)
		}
		requested[l.ProductID] += l.Quantity
	}

	if policies && m.kind.CheckStock {
		for _, productID := range order {
			if err := m.ledger.CheckAvailable(ctx, productID, requested[productID]); err != nil {
				return err
			}
		}
	}

	Recalculate(doc)
	return nil
}

func (m *Manager[T]) record(ctx context.Context, id entity.ID, action audit.Action, changes map[string]any) error {
	entry := audit.Entry{
		EntityType: string(m.kind.Type),
		EntityID:   id,
		Action:     action,
		Changes:    changes,
	}
	audit.FillDefaults(ctx, &entry)
	if err := m.audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("record audit: %w", err)
	}
	return nil
}
