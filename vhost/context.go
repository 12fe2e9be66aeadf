package vhost

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
)

type contextKey struct{}

var matchContextKey contextKey

type matchSlot struct {
	match atomic.Pointer[Match]
}

// NewContext returns a new context with an empty match slot.
// It does nothing and returns ctx if it already has a match slot.
func NewContext(ctx context.Context) context.Context {
	if _, ok := ctx.Value(matchContextKey).(*matchSlot); ok {
		return ctx
	}

	return context.WithValue(ctx, matchContextKey, &matchSlot{})
}

// SetMatch stores the match in the slot of ctx. The slot can be written
// only once.
func SetMatch(ctx context.Context, m *Match) error {
	if m == nil {
		return fmt.Errorf("%w: nil match", ErrInvalidArgument)
	}

	slot, ok := ctx.Value(matchContextKey).(*matchSlot)
	if !ok {
		return fmt.Errorf("%w: context has no match slot", ErrInvalidArgument)
	}

	if !slot.match.CompareAndSwap(nil, m) {
		return ErrMatchAlreadySet
	}

	return nil
}

// MatchFromContext returns the match stored in ctx, or ErrMatchNotSet.
func MatchFromContext(ctx context.Context) (*Match, error) {
	slot, ok := ctx.Value(matchContextKey).(*matchSlot)
	if !ok {
		return nil, ErrMatchNotSet
	}

	m := slot.match.Load()
	if m == nil {
		return nil, ErrMatchNotSet
	}

	return m, nil
}

// MatchFromRequest returns the match stored in the context of r.
func MatchFromRequest(r *http.Request) (*Match, error) {
	return MatchFromContext(r.Context())
}
