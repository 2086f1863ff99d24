package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func declareStates(t *testing.T, s *StateStore, owner *Instance, initials ...any) []*StateSlot {
	t.Helper()

	s.Begin()
	slots := make([]*StateSlot, 0, len(initials))
	for _, initial := range initials {
		slot, err := s.Declare(owner, initial)
		require.NoError(t, err)
		slots = append(slots, slot)
	}
	require.NoError(t, s.End(owner))

	return slots
}

func TestStateStore(t *testing.T) {
	owner := newInstance(1, NewRegistry(Config{}), nil)

	t.Run("folds updates in order", func(t *testing.T) {
		s := NewStateStore()
		slots := declareStates(t, s, owner, 1, "a")
		s.Commit()

		s.push(slots[0], SetTo(10))
		s.push(slots[0], UpdateWith(func(prev any) any { return prev.(int) * 2 }))
		s.push(slots[1], UpdateWith(func(prev any) any { return prev.(string) + "b" }))

		assert.True(t, s.HasPending())
		assert.True(t, s.Flush())
		assert.False(t, s.HasPending())

		// staged values are visible before the commit
		assert.Equal(t, 20, slots[0].Value())
		assert.Equal(t, []any{1, "a"}, s.Values())

		s.Commit()
		assert.Equal(t, []any{20, "ab"}, s.Values())
	})

	t.Run("flush without updates reports no change", func(t *testing.T) {
		s := NewStateStore()
		declareStates(t, s, owner, 1)
		s.Commit()

		assert.False(t, s.Flush())
		assert.False(t, s.Flush())
	})

	t.Run("equal literal is applied without change", func(t *testing.T) {
		s := NewStateStore()
		slots := declareStates(t, s, owner, 3)
		s.Commit()

		s.push(slots[0], SetTo(4))
		s.push(slots[0], SetTo(3))

		assert.False(t, s.Flush())
		assert.False(t, s.HasPending())
	})

	t.Run("lazy initial value", func(t *testing.T) {
		s := NewStateStore()
		calls := 0
		lazy := Lazy(func() any {
			calls++
			return "computed"
		})

		slots := declareStates(t, s, owner, lazy)
		s.Commit()
		declareStates(t, s, owner, lazy)

		assert.Equal(t, "computed", slots[0].Value())
		assert.Equal(t, 1, calls)
	})

	t.Run("rollback restores committed values", func(t *testing.T) {
		s := NewStateStore()
		slots := declareStates(t, s, owner, 1, 2)
		s.Commit()

		s.push(slots[1], SetTo(5))
		require.True(t, s.Flush())

		s.Begin()
		_, err := s.Declare(owner, 1)
		require.NoError(t, err)

		err = s.End(owner)
		var orderErr *SlotOrderError
		require.True(t, errors.As(err, &orderErr))
		assert.Equal(t, HookState, orderErr.Kind)

		s.Rollback()
		assert.Equal(t, []any{1, 2}, s.Values())
		assert.Equal(t, 2, slots[1].Value())
	})

	t.Run("extra slot after mount", func(t *testing.T) {
		s := NewStateStore()
		declareStates(t, s, owner, 1)
		s.Commit()

		s.Begin()
		_, err := s.Declare(owner, 1)
		require.NoError(t, err)
		_, err = s.Declare(owner, 2)
		assert.ErrorIs(t, err, ErrSlotOrderViolation)

		s.Rollback()
		assert.Equal(t, 1, s.Len())
	})
}
