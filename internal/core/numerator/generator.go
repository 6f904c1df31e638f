package numerator

import (
	"context"
	"time"
)

// Generator issues the next number of a scheme for the period containing at.
//
// Implementations must be called inside the transaction that persists the
// document: the number is reserved until that transaction ends, so concurrent
// creations in the same period can never observe the same "next" value.
type Generator interface {
	Next(ctx context.Context, scheme Scheme, at time.Time) (string, error)
}
