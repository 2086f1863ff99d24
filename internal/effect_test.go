package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeps(t *testing.T) {
	values := func(v ...any) Deps { return Deps{Mode: DepsValues, Values: v} }
	always := Deps{Mode: DepsAlways}
	skip := Deps{Mode: DepsSkip}

	tests := []struct {
		name       string
		prev, next Deps
		want       bool
	}{
		{"once stays once", values(), values(), false},
		{"same values", values(1, "a"), values(1, "a"), false},
		{"changed value", values(1), values(2), true},
		{"longer list", values(1), values(1, 2), true},
		{"shorter list", values(1, 2), values(1), true},
		{"values to once", values(1), values(), true},
		{"always", values(1), always, true},
		{"always to values", always, values(1), true},
		{"skip", values(1), skip, false},
		{"skip to values", skip, values(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.prev.differs(tt.next))
		})
	}

	assert.Equal(t, "once", values().String())
	assert.Equal(t, "[1 a]", values(1, "a").String())
}

func TestEffectStore(t *testing.T) {
	owner := newInstance(1, NewRegistry(Config{}), nil)

	logEffect := func(log *[]string, name string) func() func() {
		return func() func() {
			*log = append(*log, "body "+name)
			return func() { *log = append(*log, "cleanup "+name) }
		}
	}

	declare := func(s *EffectStore, log *[]string, deps ...Deps) {
		s.Begin()
		for i, d := range deps {
			require.NoError(t, s.Declare(owner, logEffect(log, string(rune('A'+i))), d))
		}
		require.NoError(t, s.End(owner))
	}

	t.Run("cleanups run before bodies", func(t *testing.T) {
		log := []string{}
		s := NewEffectStore()

		declare(s, &log, Deps{Values: []any{0}}, Deps{Values: []any{0}}, Deps{Values: []any{0}})
		require.NoError(t, s.Commit(owner))

		log = log[:0]
		declare(s, &log, Deps{Values: []any{1}}, Deps{Values: []any{0}}, Deps{Values: []any{1}})
		require.NoError(t, s.Commit(owner))

		assert.Equal(t, []string{
			"cleanup A",
			"cleanup C",
			"body A",
			"body C",
		}, log)
	})

	t.Run("rollback keeps the previous declaration", func(t *testing.T) {
		log := []string{}
		s := NewEffectStore()

		declare(s, &log, Deps{Values: []any{0}})
		require.NoError(t, s.Commit(owner))

		s.Begin()
		require.NoError(t, s.Declare(owner, logEffect(&log, "X"), Deps{Values: []any{1}}))
		s.Rollback()

		assert.Equal(t, "[0]", s.Slots()[0].Deps().String())

		log = log[:0]
		declare(s, &log, Deps{Values: []any{0}})
		require.NoError(t, s.Commit(owner))
		assert.Empty(t, log)
	})

	t.Run("teardown runs cleanups once", func(t *testing.T) {
		log := []string{}
		s := NewEffectStore()

		declare(s, &log, Deps{}, Deps{Mode: DepsSkip}, Deps{Mode: DepsAlways})
		require.NoError(t, s.Commit(owner))
		require.NoError(t, s.Teardown(owner))
		require.NoError(t, s.Teardown(owner))

		assert.Equal(t, []string{
			"body A",
			"body C",
			"cleanup A",
			"cleanup C",
		}, log)
		assert.Equal(t, 0, s.Len())
	})

	t.Run("failures are tagged with their slot", func(t *testing.T) {
		s := NewEffectStore()
		ran := false

		s.Begin()
		require.NoError(t, s.Declare(owner, func() func() { panic("first") }, Deps{}))
		require.NoError(t, s.Declare(owner, func() func() { ran = true; return nil }, Deps{}))
		require.NoError(t, s.End(owner))

		err := s.Commit(owner)
		require.ErrorIs(t, err, ErrEffectFailure)

		var effectErr *EffectError
		require.ErrorAs(t, err, &effectErr)
		assert.Equal(t, 0, effectErr.Slot)
		assert.Equal(t, StageBody, effectErr.Stage)
		assert.True(t, ran)
	})
}
