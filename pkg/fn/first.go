package fn

import (
	"context"
	"errors"
)

// ErrAllFailed is returned by First when every strategy fails.
var ErrAllFailed = errors.New("all strategies failed")

// Strategy is one attempt at producing a T. A nil second return with
// ok=false means the strategy ran cleanly but found nothing.
type Strategy[T any] func(context.Context) Result[T]

// First runs strategies in order and returns the first success.
// Intermediate failures never propagate; the final error joins them so
// callers that do care can inspect the chain. Context cancellation stops
// the sequence early.
func First[T any](ctx context.Context, strategies ...Strategy[T]) Result[T] {
	errs := []error{ErrAllFailed}
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return Err[T](err)
		}
		r := s(ctx)
		if r.IsOk() {
			return r
		}
		if _, err := r.Unwrap(); err != nil {
			errs = append(errs, err)
		}
	}
	return Err[T](errors.Join(errs...))
}
