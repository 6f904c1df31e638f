// Package context provides request-scoped values: trace ids and the acting user.
package context

import (
	"context"
)

// Actor is the caller identity injected at the boundary.
// The core never derives it; it only stamps it on documents, movements and audit entries.
type Actor struct {
	UserID string
	Source string // "jwt" or "header"
}

type actorKey struct{}

// WithActor adds Actor to context.
func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor returns Actor from context.
func GetActor(ctx context.Context) *Actor {
	if v, ok := ctx.Value(actorKey{}).(*Actor); ok {
		return v
	}
	return nil
}

// GetUserID returns the acting user id or empty string.
func GetUserID(ctx context.Context) string {
	if a := GetActor(ctx); a != nil {
		return a.UserID
	}
	return ""
}

// WithUserID is a shortcut for WithActor with only a user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return WithActor(ctx, &Actor{UserID: userID})
}
