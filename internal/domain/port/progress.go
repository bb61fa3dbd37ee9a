package port

import "context"

// ProgressFunc reports percentage (0-100) and a human-readable message for
// the operation bound to the context.
type ProgressFunc func(percentage int, message string)

type progressKey struct{}

// WithProgress binds a progress reporter to the context of one operation.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// Progress returns the bound reporter, or a no-op when none is bound so
// callees can report unconditionally.
func Progress(ctx context.Context) ProgressFunc {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		return fn
	}
	return func(int, string) {}
}
