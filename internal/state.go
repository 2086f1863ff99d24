package internal

import "sync"

// Lazy marks an initial state value that must be produced on first declaration.
type Lazy func() any

// Update is a queued state change: either a literal value or a function of the previous value.
type Update struct {
	value any
	fn    func(any) any
}

func SetTo(v any) Update { return Update{value: v} }

func UpdateWith(fn func(any) any) Update { return Update{fn: fn} }

func (u Update) apply(prev any) any {
	if u.fn != nil {
		return u.fn(prev)
	}
	return u.value
}

type StateSlot struct {
	index int
	owner *Instance

	value  any
	staged *any // nil if nothing was flushed for the pass in progress

	// guarded by StateStore.mu
	pending []Update
}

func (s *StateSlot) Index() int { return s.index }

// Value returns the value a render sees: the staged one while a pass is in progress.
func (s *StateSlot) Value() any {
	if s.staged != nil {
		return *s.staged
	}
	return s.value
}

// Enqueue records an update and asks the owning instance for a new pass.
func (s *StateSlot) Enqueue(u Update) {
	s.owner.state.push(s, u)
	s.owner.requestFromSetter()
}

type StateStore struct {
	// guards pending updates, and slots against setters on other goroutines
	mu sync.Mutex

	slots []*StateSlot

	// number of slots committed by the previous pass, -1 before the first commit
	committed int
	cursor    int
}

func NewStateStore() *StateStore {
	return &StateStore{
		slots:     make([]*StateSlot, 0),
		committed: -1,
	}
}

func (s *StateStore) Begin() {
	s.cursor = 0
}

// Declare returns the slot at the cursor, creating it on the mount pass.
func (s *StateStore) Declare(owner *Instance, initial any) (*StateSlot, error) {
	index := s.cursor
	s.cursor++

	if index < len(s.slots) {
		return s.slots[index], nil
	}

	if s.committed >= 0 {
		return nil, &SlotOrderError{Instance: owner.id, Kind: HookState, Want: s.committed, Got: s.cursor}
	}

	if lazy, ok := initial.(Lazy); ok {
		initial = lazy()
	}

	slot := &StateSlot{index: index, owner: owner, value: initial}

	s.mu.Lock()
	s.slots = append(s.slots, slot)
	s.mu.Unlock()

	return slot, nil
}

// End checks that the pass declared as many slots as the previous one.
func (s *StateStore) End(owner *Instance) error {
	if s.committed >= 0 && s.cursor != s.committed {
		return &SlotOrderError{Instance: owner.id, Kind: HookState, Want: s.committed, Got: s.cursor}
	}
	return nil
}

func (s *StateStore) push(slot *StateSlot, u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot.pending = append(slot.pending, u)
}

// Flush folds every queued update over its slot, in slot order, staging the results.
// It reports whether any staged value differs from the committed one.
func (s *StateStore) Flush() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, slot := range s.slots {
		if len(slot.pending) == 0 {
			continue
		}

		updates := slot.pending
		slot.pending = nil

		v := slot.Value()
		for _, u := range updates {
			v = u.apply(v)
		}
		slot.staged = &v

		if !Equal(slot.value, v) {
			changed = true
		}
	}

	return changed
}

// HasPending reports whether any slot has queued updates.
func (s *StateStore) HasPending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slot := range s.slots {
		if len(slot.pending) > 0 {
			return true
		}
	}
	return false
}

// Commit applies the staged values once a pass rendered successfully.
func (s *StateStore) Commit() {
	for _, slot := range s.slots {
		if slot.staged != nil {
			slot.value = *slot.staged
			slot.staged = nil
		}
	}
	s.committed = len(s.slots)
}

// Rollback drops staged values and any slot created by a failed pass.
func (s *StateStore) Rollback() {
	for _, slot := range s.slots {
		slot.staged = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.committed >= 0 && len(s.slots) > s.committed {
		s.slots = s.slots[:s.committed]
	}
	if s.committed < 0 {
		s.slots = s.slots[:0]
	}
}

// Values returns the committed value of every slot.
func (s *StateStore) Values() []any {
	values := make([]any, len(s.slots))
	for i, slot := range s.slots {
		values[i] = slot.value
	}
	return values
}

func (s *StateStore) Len() int { return len(s.slots) }
