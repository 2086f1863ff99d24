package internal

import (
	"errors"
	"fmt"
)

type DepsMode int

const (
	// DepsValues re-runs the effect when any value changes. No values means run once.
	DepsValues DepsMode = iota
	// DepsAlways runs the effect after every pass.
	DepsAlways
	// DepsSkip never runs the effect while declared with it.
	DepsSkip
)

type Deps struct {
	Mode   DepsMode
	Values []any
}

// differs reports whether an effect declared with next after prev must run again.
func (prev Deps) differs(next Deps) bool {
	switch next.Mode {
	case DepsAlways:
		return true
	case DepsSkip:
		return false
	}

	if prev.Mode != DepsValues {
		return true
	}

	return !EqualValues(prev.Values, next.Values)
}

func (d Deps) String() string {
	switch d.Mode {
	case DepsAlways:
		return "always"
	case DepsSkip:
		return "skip"
	}

	if len(d.Values) == 0 {
		return "once"
	}
	return fmt.Sprintf("%v", d.Values)
}

type effectDecl struct {
	fn   func() func()
	deps Deps
	run  bool
}

type EffectSlot struct {
	index int

	fn      func() func()
	deps    Deps
	cleanup func()

	// declaration of the pass in progress, applied on commit
	staged *effectDecl
}

func (s *EffectSlot) Index() int       { return s.index }
func (s *EffectSlot) Deps() Deps       { return s.deps }
func (s *EffectSlot) HasCleanup() bool { return s.cleanup != nil }

type EffectStore struct {
	slots []*EffectSlot

	// number of slots committed by the previous pass, -1 before the first commit
	committed int
	cursor    int
}

func NewEffectStore() *EffectStore {
	return &EffectStore{
		slots:     make([]*EffectSlot, 0),
		committed: -1,
	}
}

func (s *EffectStore) Begin() {
	s.cursor = 0
}

// Declare compares deps with the previous pass and stages the slot as pending when they differ.
func (s *EffectStore) Declare(owner *Instance, fn func() func(), deps Deps) error {
	index := s.cursor
	s.cursor++

	if index < len(s.slots) {
		slot := s.slots[index]
		slot.staged = &effectDecl{fn: fn, deps: deps, run: slot.deps.differs(deps)}
		return nil
	}

	if s.committed >= 0 {
		return &SlotOrderError{Instance: owner.id, Kind: HookEffect, Want: s.committed, Got: s.cursor}
	}

	slot := &EffectSlot{index: index, deps: deps}
	slot.staged = &effectDecl{fn: fn, deps: deps, run: deps.Mode != DepsSkip}
	s.slots = append(s.slots, slot)

	return nil
}

// End checks that the pass declared as many slots as the previous one.
func (s *EffectStore) End(owner *Instance) error {
	if s.committed >= 0 && s.cursor != s.committed {
		return &SlotOrderError{Instance: owner.id, Kind: HookEffect, Want: s.committed, Got: s.cursor}
	}
	return nil
}

// Rollback drops the declarations of a failed pass.
func (s *EffectStore) Rollback() {
	for _, slot := range s.slots {
		slot.staged = nil
	}

	if s.committed < 0 {
		s.slots = s.slots[:0]
	} else if len(s.slots) > s.committed {
		s.slots = s.slots[:s.committed]
	}
}

// Commit applies the staged declarations, then runs the cleanups of every pending
// slot followed by the bodies of every pending slot, both in slot order.
func (s *EffectStore) Commit(owner *Instance) error {
	due := make([]*EffectSlot, 0, len(s.slots))
	for _, slot := range s.slots {
		decl := slot.staged
		if decl == nil {
			continue
		}
		slot.staged = nil

		if decl.run || decl.deps.Mode == DepsSkip {
			slot.deps = decl.deps
		}
		if decl.run {
			slot.fn = decl.fn
			due = append(due, slot)
		}
	}
	s.committed = len(s.slots)

	queue := NewEffectQueue()
	for _, slot := range due {
		if cleanup := slot.cleanup; cleanup != nil {
			slot.cleanup = nil
			queue.Enqueue(StageCleanup, slot.index, cleanup)
		}
	}
	for _, slot := range due {
		queue.Enqueue(StageBody, slot.index, func() {
			slot.cleanup = slot.fn()
		})
	}

	errs := queue.RunEffects(owner.id, StageCleanup)
	errs = append(errs, queue.RunEffects(owner.id, StageBody)...)

	return errors.Join(errs...)
}

// Teardown runs every remaining cleanup once, in slot order, and discards the slots.
func (s *EffectStore) Teardown(owner *Instance) error {
	queue := NewEffectQueue()
	for _, slot := range s.slots {
		if cleanup := slot.cleanup; cleanup != nil {
			slot.cleanup = nil
			queue.Enqueue(StageCleanup, slot.index, cleanup)
		}
	}
	s.slots = nil
	s.committed = 0

	return errors.Join(queue.RunEffects(owner.id, StageCleanup)...)
}

func (s *EffectStore) Slots() []*EffectSlot { return s.slots }

func (s *EffectStore) Len() int { return len(s.slots) }
