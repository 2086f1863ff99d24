package internal

import (
	"errors"
	"fmt"
)

var (
	ErrSlotOrderViolation = errors.New("hooks called in an inconsistent order")
	ErrEffectFailure      = errors.New("effect failed")
	ErrStaleInstance      = errors.New("instance is unmounted")
	ErrRenderFailure      = errors.New("render failed")
	ErrTooManyPasses      = errors.New("too many consecutive passes")
	ErrNoInstance         = errors.New("hook called outside of a render")
	ErrUnknownInstance    = errors.New("unknown instance")
)

// HookKind identifies which store a hook call went to.
type HookKind int

const (
	HookState HookKind = iota
	HookEffect
)

func (k HookKind) String() string {
	switch k {
	case HookState:
		return "state"
	case HookEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// SlotOrderError reports a render that did not repeat the hook calls of the previous pass.
// Want and Got are slot counts, or -1 when only the order of hook kinds changed.
type SlotOrderError struct {
	Instance ID
	Kind     HookKind
	Want     int
	Got      int
}

func (e *SlotOrderError) Error() string {
	if e.Want < 0 {
		return fmt.Sprintf("instance %d: %v: order of state and effect hooks changed", e.Instance, ErrSlotOrderViolation)
	}
	return fmt.Sprintf("instance %d: %v: %d %s hooks, previous pass had %d", e.Instance, ErrSlotOrderViolation, e.Got, e.Kind, e.Want)
}

func (e *SlotOrderError) Unwrap() error { return ErrSlotOrderViolation }

// EffectStage tells whether a failure happened in an effect body or in its cleanup.
type EffectStage int

const (
	StageCleanup EffectStage = iota
	StageBody
)

func (s EffectStage) String() string {
	if s == StageCleanup {
		return "cleanup"
	}
	return "body"
}

// EffectError is a recovered panic from an effect body or cleanup.
type EffectError struct {
	Instance ID
	Slot     int
	Stage    EffectStage
	Value    any
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("instance %d: effect %d %s: %v", e.Instance, e.Slot, e.Stage, e.Value)
}

func (e *EffectError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrEffectFailure, err}
	}
	return []error{ErrEffectFailure}
}

// RenderError is a recovered panic from a render function.
type RenderError struct {
	Instance ID
	Value    any
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("instance %d: %v: %v", e.Instance, ErrRenderFailure, e.Value)
}

func (e *RenderError) Unwrap() []error {
	if err, ok := e.Value.(error); ok {
		return []error{ErrRenderFailure, err}
	}
	return []error{ErrRenderFailure}
}
