// Package lifecycle evaluates document status tables: state × event → {new state, effects}.
// Every document type declares its lifecycle as data; the document engine fires
// events against it and applies the listed effects.
package lifecycle

import (
	"fmt"
	"slices"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
)

// Event is a requested status change.
type Event string

// Effect is a side effect attached to a transition.
type Effect string

const (
	// EffectStockIn increments stock by every line quantity and records IN movements.
	EffectStockIn Effect = "stock_in"
	// EffectStockOut decrements stock by every line quantity and records OUT movements.
	EffectStockOut Effect = "stock_out"
	// EffectStampSent records the moment a quotation was sent.
	EffectStampSent Effect = "stamp_sent"
	// EffectStampApproved records the moment a quotation was approved.
	EffectStampApproved Effect = "stamp_approved"
)

// Transition is one row of the table.
type Transition struct {
	From    []entity.Status
	Event   Event
	To      entity.Status
	Effects []Effect
	// Internal transitions are fired by the engine itself (conversion), never by callers.
	Internal bool
}

// Machine is an immutable lifecycle table for one document type.
type Machine struct {
	document string
	initial  entity.Status
	editable entity.Status
	table    map[entity.Status]map[Event]Transition
	states   []entity.Status
}

// New builds a machine. It panics on a table that declares the same
// (state, event) pair twice, since that is a programming error in a package var.
func New(document string, initial, editable entity.Status, transitions ...Transition) *Machine {
	m := &Machine{
		document: document,
		initial:  initial,
		editable: editable,
		table:    make(map[entity.Status]map[Event]Transition),
	}
	m.addState(initial)
	m.addState(editable)

	for _, t := range transitions {
		m.addState(t.To)
		for _, from := range t.From {
			m.addState(from)
			if m.table[from] == nil {
				m.table[from] = make(map[Event]Transition)
			}
			if _, dup := m.table[from][t.Event]; dup {
				panic(fmt.Sprintf("lifecycle %s: duplicate transition %s --%s-->", document, from, t.Event))
			}
			m.table[from][t.Event] = t
		}
	}
	return m
}

func (m *Machine) addState(s entity.Status) {
	if !slices.Contains(m.states, s) {
		m.states = append(m.states, s)
	}
}

// Document returns the document name used in messages.
func (m *Machine) Document() string { return m.document }

// Initial is the status of a newly created document.
func (m *Machine) Initial() entity.Status { return m.initial }

// States lists every status the table mentions.
func (m *Machine) States() []entity.Status { return slices.Clone(m.states) }

// IsEditable reports whether a document in status s may be edited or deleted.
func (m *Machine) IsEditable(s entity.Status) bool { return s == m.editable }

// CheckEditable returns a business rejection when s is not the editable status.
func (m *Machine) CheckEditable(s entity.Status) error {
	if m.IsEditable(s) {
		return nil
	}
	return apperror.NewNotEditable(m.document, string(s))
}

// IsTerminal reports whether no event can fire from s.
func (m *Machine) IsTerminal(s entity.Status) bool { return len(m.table[s]) == 0 }

// Fire looks up the transition for event in status current. Unknown pairs
// yield an ILLEGAL_TRANSITION business error and leave the caller's state untouched.
func (m *Machine) Fire(current entity.Status, event Event) (Transition, error) {
	t, ok := m.table[current][event]
	if !ok {
		return Transition{}, apperror.NewIllegalTransition(m.document, string(current), string(event))
	}
	return t, nil
}

// FirePublic is Fire restricted to caller-visible events.
func (m *Machine) FirePublic(current entity.Status, event Event) (Transition, error) {
	t, err := m.Fire(current, event)
	if err != nil {
		return t, err
	}
	if t.Internal {
		return Transition{}, apperror.NewIllegalTransition(m.document, string(current), string(event)).
			WithDetail("reason", "event is not available to callers")
	}
	return t, nil
}

// CanFire reports whether event is legal from current.
func (m *Machine) CanFire(current entity.Status, event Event) bool {
	_, ok := m.table[current][event]
	return ok
}

// AllowedEvents lists public events legal from current, sorted.
func (m *Machine) AllowedEvents(current entity.Status) []Event {
	events := make([]Event, 0, len(m.table[current]))
	for ev, t := range m.table[current] {
		if !t.Internal {
			events = append(events, ev)
		}
	}
	slices.Sort(events)
	return events
}

// Has reports whether the transition carries effect.
func (t Transition) Has(effect Effect) bool {
	return slices.Contains(t.Effects, effect)
}
