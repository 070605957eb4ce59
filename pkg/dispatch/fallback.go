package dispatch

import (
	"context"
	stderrors "errors"
)

// Matcher reports whether an error should trigger the fallback path.
type Matcher func(error) bool

// On builds a Matcher for one typed error in the taxonomy.
func On[E error]() Matcher {
	return func(err error) bool {
		var target E
		return stderrors.As(err, &target)
	}
}

// Fallback runs primary and, when it fails with an error matched by any of
// the matchers, runs fallback instead. Unmatched errors pass through; the
// fallback's own failure is returned as-is.
func Fallback[T any](ctx context.Context, primary, fallback func(context.Context) (T, error), on ...Matcher) (T, error) {
	out, err := primary(ctx)
	if err == nil {
		return out, nil
	}
	for _, m := range on {
		if m(err) {
			return fallback(ctx)
		}
	}
	return out, err
}
