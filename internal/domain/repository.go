// Package domain holds types shared by every domain service: list paging and lifecycle hooks.
package domain

import (
	"context"
)

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search matches codes, numbers and descriptions (ILIKE)
	Search string

	// OrderBy is a column name, "-" prefix for descending
	OrderBy string

	Limit  int
	Offset int
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Normalize clamps paging values.
func (f *ListFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Hooks ---

// HookEvent represents lifecycle event type.
type HookEvent string

const (
	BeforeCreate    HookEvent = "before_create"
	AfterCreate     HookEvent = "after_create"
	BeforeUpdate    HookEvent = "before_update"
	AfterUpdate     HookEvent = "after_update"
	AfterDelete     HookEvent = "after_delete"
	AfterTransition HookEvent = "after_transition"
)

// Hook is a function that runs at specific lifecycle points.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for the specified event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes all hooks for the specified event, stopping at the first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	for _, hook := range r.hooks[event] {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}

// OnBeforeCreate registers a hook to run before create.
func (r *HookRegistry[T]) OnBeforeCreate(hook Hook[T]) {
	r.On(BeforeCreate, hook)
}

// OnBeforeUpdate registers a hook to run before update.
func (r *HookRegistry[T]) OnBeforeUpdate(hook Hook[T]) {
	r.On(BeforeUpdate, hook)
}

// OnAfterTransition registers a hook to run after a status change committed.
func (r *HookRegistry[T]) OnAfterTransition(hook Hook[T]) {
	r.On(AfterTransition, hook)
}
