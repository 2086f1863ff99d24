package internal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntime(t *testing.T) {
	t.Run("goroutines get their own tracker", func(t *testing.T) {
		registry := NewRegistry(Config{})
		var wg sync.WaitGroup

		seen := make([]ID, 2)
		for n := range 2 {
			wg.Go(func() {
				i := newInstance(ID(n+1), registry, nil)
				GetRuntime().tracker.RunWithInstance(i, func() {
					seen[n] = CurrentInstance().ID()
				})
			})
		}
		wg.Wait()

		assert.Equal(t, []ID{1, 2}, seen)
	})

	t.Run("idle runtime is released", func(t *testing.T) {
		r := GetRuntime()
		r.release()

		_, ok := LookupRuntime()
		assert.False(t, ok)
	})

	t.Run("batch defers and releases", func(t *testing.T) {
		Batch(func() {
			r, ok := LookupRuntime()
			assert.True(t, ok)
			assert.True(t, r.batcher.IsBatching())
		})

		_, ok := LookupRuntime()
		assert.False(t, ok)
	})

	t.Run("hook outside render", func(t *testing.T) {
		assert.PanicsWithValue(t, ErrNoInstance, func() { CurrentInstance() })
	})
}
