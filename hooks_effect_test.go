package hooks

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffect(t *testing.T) {
	t.Run("runs once and cleans up on unmount", func(t *testing.T) {
		log := []string{}
		var set Setter[int]

		c, err := Mount(NewRoot(), func() int {
			count, setCount := UseState(0)
			set = setCount

			UseEffect(func() func() {
				log = append(log, "effect")

				return func() { log = append(log, "cleanup") }
			}, Once)

			return count
		})
		require.NoError(t, err)

		for i := 1; i <= 3; i++ {
			set.Set(i)
		}
		assert.Equal(t, 4, c.Passes())

		require.NoError(t, c.Unmount())
		assert.Equal(t, Unmounted, c.Phase())

		assert.Equal(t, []string{
			"effect",
			"cleanup",
		}, log)
	})

	t.Run("runs after every pass with Always", func(t *testing.T) {
		log := []string{}
		var set Setter[int]

		_, err := Mount(NewRoot(), func() int {
			count, setCount := UseState(0)
			set = setCount

			UseEffect(func() func() {
				log = append(log, fmt.Sprintf("effect %d", count))
				return func() { log = append(log, fmt.Sprintf("cleanup %d", count)) }
			}, Always)

			return count
		})
		require.NoError(t, err)

		set.Set(1)
		set.Set(2)

		assert.Equal(t, []string{
			"effect 0",
			"cleanup 0",
			"effect 1",
			"cleanup 1",
			"effect 2",
		}, log)
	})

	t.Run("runs again only when deps change", func(t *testing.T) {
		log := []string{}
		var setCount Setter[int]
		var setOther Setter[string]

		_, err := Mount(NewRoot(), func() int {
			count, sc := UseState(0)
			other, so := UseState("")
			setCount, setOther = sc, so

			UseEffect(func() {
				log = append(log, fmt.Sprintf("count %d", count))
			}, On(count))

			log = append(log, fmt.Sprintf("render %d %q", count, other))
			return count
		})
		require.NoError(t, err)

		setOther.Set("a")
		setCount.Set(1)
		setOther.Set("b")

		assert.Equal(t, []string{
			"render 0 \"\"",
			"count 0",
			"render 0 \"a\"",
			"render 1 \"a\"",
			"count 1",
			"render 1 \"b\"",
		}, log)
	})

	t.Run("cleans up every due effect before running any", func(t *testing.T) {
		log := []string{}
		var set Setter[int]

		_, err := Mount(NewRoot(), func() int {
			count, setCount := UseState(0)
			set = setCount
			log = append(log, fmt.Sprintf("render %d", count))

			UseEffect(func() func() {
				log = append(log, "body A")
				return func() { log = append(log, "cleanup A") }
			}, On(count))

			UseEffect(func() func() {
				log = append(log, "body B")
				return func() { log = append(log, "cleanup B") }
			}, On(count))

			return count
		})
		require.NoError(t, err)

		set.Set(1)

		assert.Equal(t, []string{
			"render 0",
			"body A",
			"body B",
			"render 1",
			"cleanup A",
			"cleanup B",
			"body A",
			"body B",
		}, log)
	})

	t.Run("skipped effect keeps its slot", func(t *testing.T) {
		log := []string{}
		var set Setter[bool]

		_, err := Mount(NewRoot(), func() bool {
			enabled, setEnabled := UseState(false)
			set = setEnabled

			deps := Skip
			if enabled {
				deps = Once
			}
			UseEffect(func() {
				log = append(log, "effect")
			}, deps)

			return enabled
		})
		require.NoError(t, err)
		assert.Empty(t, log)

		set.Set(true)
		assert.Equal(t, []string{"effect"}, log)
	})

	t.Run("deps of a different length run the effect", func(t *testing.T) {
		log := []string{}
		var set Setter[[]any]

		_, err := Mount(NewRoot(), func() int {
			values, setValues := UseState([]any{1})
			set = setValues

			UseEffect(func() {
				log = append(log, fmt.Sprintf("effect %v", values))
			}, On(values...))

			return len(values)
		})
		require.NoError(t, err)

		set.Set([]any{1, 2})

		assert.Equal(t, []string{
			"effect [1]",
			"effect [1 2]",
		}, log)
	})

	t.Run("failing effect does not stop the others", func(t *testing.T) {
		log := []string{}

		c, err := Mount(NewRoot(), func() int {
			UseEffect(func() {
				panic("boom")
			}, Once)

			UseEffect(func() {
				log = append(log, "second")
			}, Once)

			return 0
		})
		require.NotNil(t, c)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEffectFailure)

		var effectErr *EffectError
		require.ErrorAs(t, err, &effectErr)
		assert.Equal(t, 0, effectErr.Slot)
		assert.Equal(t, "boom", effectErr.Value)

		assert.Equal(t, []string{"second"}, log)
		assert.Equal(t, Updating, c.Phase())
	})

	t.Run("teardown runs every cleanup and joins failures", func(t *testing.T) {
		log := []string{}
		cause := errors.New("cleanup failed")

		c, err := Mount(NewRoot(), func() int {
			UseEffect(func() func() {
				return func() { panic(cause) }
			}, Once)

			UseEffect(func() func() {
				return func() { log = append(log, "second cleanup") }
			}, Once)

			UseEffect(func() func() {
				return func() { panic("third") }
			}, Once)

			return 0
		})
		require.NoError(t, err)

		err = c.Unmount()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrEffectFailure)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "effect 0 cleanup")
		assert.Contains(t, err.Error(), "effect 2 cleanup")

		assert.Equal(t, []string{"second cleanup"}, log)
		assert.Equal(t, Unmounted, c.Phase())
	})
}
