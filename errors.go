package hooks

import "github.com/AnatoleLucet/hooks/internal"

var (
	// ErrSlotOrderViolation means a render did not repeat the hooks of the previous one.
	// The component is broken and ignores further updates.
	ErrSlotOrderViolation = internal.ErrSlotOrderViolation
	// ErrEffectFailure wraps panics recovered from effects and cleanups.
	ErrEffectFailure = internal.ErrEffectFailure
	// ErrStaleInstance is returned when updating or unmounting an unmounted component.
	ErrStaleInstance = internal.ErrStaleInstance
	// ErrRenderFailure wraps a panic recovered from a render function.
	ErrRenderFailure = internal.ErrRenderFailure
	// ErrTooManyPasses means state kept changing past the pass limit.
	ErrTooManyPasses = internal.ErrTooManyPasses
	// ErrNoInstance is the panic value of a hook called outside a render.
	ErrNoInstance = internal.ErrNoInstance
	// ErrUnknownInstance is returned for ids that were never mounted.
	ErrUnknownInstance = internal.ErrUnknownInstance
)

type (
	SlotOrderError = internal.SlotOrderError
	EffectError    = internal.EffectError
	RenderError    = internal.RenderError
)
