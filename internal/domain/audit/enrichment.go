// Package audit records who changed which document and how.
package audit

import (
	"context"
	"time"

	appctx "inventario/internal/core/context"
	"inventario/internal/core/entity"
)

// Action is the kind of audited change.
type Action string

const (
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionTransition Action = "transition"
	ActionConvert    Action = "convert"
)

// Entry is one audit record.
type Entry struct {
	EntityType string         `json:"entityType"`
	EntityID   entity.ID      `json:"entityId"`
	Action     Action         `json:"action"`
	UserID     string         `json:"userId,omitempty"`
	Changes    map[string]any `json:"changes,omitempty"`
	At         time.Time      `json:"at"`
}

// Recorder persists audit entries. Implementations must write through the
// transaction in ctx so an entry never outlives a rolled back change.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// NopRecorder discards entries.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, Entry) error { return nil }

// EnrichCreatedBy stamps the acting user on a new record.
// The identity is injected by the caller; an empty actor leaves the field as is.
func EnrichCreatedBy(ctx context.Context, createdBy *string) {
	if userID := appctx.GetUserID(ctx); userID != "" && createdBy != nil {
		*createdBy = userID
	}
}

// FillDefaults sets the acting user and timestamp when absent.
func FillDefaults(ctx context.Context, e *Entry) {
	if e.UserID == "" {
		e.UserID = appctx.GetUserID(ctx)
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
}
