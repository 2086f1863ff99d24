// Package hooks is a small reactive runtime for component render functions.
//
// A component is a function that calls hooks in a fixed order and returns an
// output. The runtime keeps the state of every hook between passes, re-renders
// when state changes, and runs effects whose dependencies changed, always
// cleaning up the previous run first.
package hooks

import (
	"slices"

	"github.com/AnatoleLucet/hooks/internal"
)

func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}

	return v.(T)
}

// Setter enqueues updates of one state slot. It is safe to use from any goroutine.
//
// Each call also requests a pass of the component right away, run on the
// calling goroutine unless a pass is already in flight. Wrap several calls in
// Batch to render once for all of them.
type Setter[T any] struct {
	slot *internal.StateSlot
}

// Set replaces the value on the next pass.
func (s Setter[T]) Set(v T) {
	s.slot.Enqueue(internal.SetTo(v))
}

// Update derives the next value from the previous one, after any update queued before it.
func (s Setter[T]) Update(fn func(prev T) T) {
	s.slot.Enqueue(internal.UpdateWith(func(prev any) any {
		return fn(as[T](prev))
	}))
}

// UseState declares a state slot. The initial value is only used on mount.
func UseState[T any](initial T) (T, Setter[T]) {
	slot := internal.CurrentInstance().DeclareState(initial)
	return as[T](slot.Value()), Setter[T]{slot}
}

// UseLazyState is UseState with an initial value computed once, on mount.
func UseLazyState[T any](init func() T) (T, Setter[T]) {
	slot := internal.CurrentInstance().DeclareState(internal.Lazy(func() any { return init() }))
	return as[T](slot.Value()), Setter[T]{slot}
}

// Deps decides when an effect runs again. The zero value is Once.
type Deps struct {
	deps internal.Deps
}

var (
	// Always runs the effect after every render.
	Always = Deps{internal.Deps{Mode: internal.DepsAlways}}
	// Once runs the effect after the first render only.
	Once = Deps{internal.Deps{Mode: internal.DepsValues}}
	// Skip keeps the effect's slot without running it.
	Skip = Deps{internal.Deps{Mode: internal.DepsSkip}}
)

// On runs the effect after the first render and whenever one of the values changed.
func On(values ...any) Deps {
	return Deps{internal.Deps{Mode: internal.DepsValues, Values: slices.Clone(values)}}
}

func (d Deps) String() string { return d.deps.String() }

type EffectFunc interface {
	func() | func() func()
}

// UseEffect declares an effect. A returned func is the cleanup, called before
// the effect runs again and when the component unmounts.
func UseEffect[F EffectFunc](fn F, deps Deps) {
	var body func() func()

	switch fn := any(fn).(type) {
	case func():
		body = func() func() {
			fn()
			return nil
		}
	case func() func():
		body = fn
	}

	internal.CurrentInstance().DeclareEffect(body, deps.deps)
}

// Batch defers the passes requested by setters called in fn until it returns,
// so each component renders at most once for all of them.
func Batch(fn func()) {
	internal.Batch(fn)
}
