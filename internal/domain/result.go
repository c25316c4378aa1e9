package domain

// Result tags a value produced by a best-effort path. A degraded result carries
// the default value that was substituted and the reason the real fetch failed,
// so "genuinely zero" stays distinguishable from "fetch failed".
type Result[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// Ok wraps a successfully fetched value.
func Ok[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Degraded wraps a default value substituted after a failure.
func Degraded[T any](v T, reason string) Result[T] {
	return Result[T]{Value: v, Degraded: true, Reason: reason}
}
