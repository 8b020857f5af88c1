package detection

import "context"

// Strategy classifies an input or returns nil.
type Strategy[T any] func(ctx context.Context, in T) *Result

// FirstMatch returns the result of the first strategy that produces one.
// Later strategies are not evaluated.
func FirstMatch[T any](ctx context.Context, in T, strategies []Strategy[T]) *Result {
	for _, s := range strategies {
		if r := s(ctx, in); r != nil {
			return r
		}
	}
	return nil
}

// BestByConfidence evaluates every strategy and returns the result with
// the highest confidence. Ties keep the earliest strategy.
func BestByConfidence[T any](ctx context.Context, in T, strategies []Strategy[T]) *Result {
	var best *Result
	for _, s := range strategies {
		r := s(ctx, in)
		if r == nil {
			continue
		}
		if best == nil || r.Confidence > best.Confidence {
			best = r
		}
	}
	return best
}
