package internal

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

type ID uint64

// Instance is a mounted component: a render function plus the slots its hooks read and write.
type Instance struct {
	id       ID
	registry *Registry

	render func() any

	state   *StateStore
	effects *EffectStore
	sched   *Scheduler

	// hash of the hook kinds called by the last committed pass, in call order
	signature uint64
	digest    *xxhash.Digest

	// what drivers read from other goroutines, replaced after every commit
	mu   sync.RWMutex
	view view
}

type view struct {
	output  any
	passes  int
	state   []any
	effects []EffectSnapshot
}

func newInstance(id ID, registry *Registry, render func() any) *Instance {
	return &Instance{
		id:       id,
		registry: registry,
		render:   render,
		state:    NewStateStore(),
		effects:  NewEffectStore(),
		sched:    NewScheduler(),
		digest:   xxhash.New(),
	}
}

func (i *Instance) ID() ID { return i.id }

func (i *Instance) Phase() Phase { return i.sched.Phase() }

// Output returns the output of the last committed render.
func (i *Instance) Output() any {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.view.output
}

// publish replaces the view with the committed state of the instance.
// Only the goroutine holding the running flag calls it.
func (i *Instance) publish(output any) {
	v := view{
		output:  output,
		passes:  i.sched.Time(),
		state:   i.state.Values(),
		effects: make([]EffectSnapshot, 0, i.effects.Len()),
	}
	for _, slot := range i.effects.Slots() {
		v.effects = append(v.effects, EffectSnapshot{
			Index:   slot.Index(),
			Deps:    slot.Deps().String(),
			Cleanup: slot.HasCleanup(),
		})
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.view = v
}

// Passes returns the number of committed render passes.
func (i *Instance) Passes() int { return i.sched.Time() }

// DeclareState is the state hook. It panics with a *SlotOrderError, recovered by the pass.
func (i *Instance) DeclareState(initial any) *StateSlot {
	i.digest.WriteString("s")

	slot, err := i.state.Declare(i, initial)
	if err != nil {
		panic(err)
	}

	return slot
}

// DeclareEffect is the effect hook. It panics with a *SlotOrderError, recovered by the pass.
func (i *Instance) DeclareEffect(fn func() func(), deps Deps) {
	i.digest.WriteString("e")

	if err := i.effects.Declare(i, fn, deps); err != nil {
		panic(err)
	}
}

func (i *Instance) mount() error {
	_, err := i.pass(true)
	if i.sched.Fault() != nil || isRenderError(err) {
		i.sched.unmounted(nil)
		i.sched.release()
		i.registry.remove(i.id)
		return err
	}

	i.sched.mounted()

	return errors.Join(err, i.drain())
}

// RequestUpdate asks for a pass. Calls made while a pass is queued or running
// coalesce, and calls with no queued update are no-ops.
func (i *Instance) RequestUpdate() error {
	run, err := i.schedule()
	if errors.Is(err, ErrStaleInstance) {
		i.registry.logf("warning: update of instance %d ignored: %v", i.id, err)
		return fmt.Errorf("update instance %d: %w", i.id, err)
	}
	if err != nil {
		return err
	}
	if !run {
		return nil
	}

	return i.drain()
}

func (i *Instance) schedule() (bool, error) {
	if err := i.sched.Check(); err != nil {
		return false, err
	}
	// a pass already in flight took the updates
	if !i.state.HasPending() {
		return false, nil
	}

	return i.sched.Schedule()
}

// Unmount tears the instance down. With a pass in flight on another goroutine,
// the teardown runs there once the pass ends and Unmount waits for it. Called
// from the instance's own render or effects, it returns at once and the
// teardown follows the current pass.
func (i *Instance) Unmount() error {
	run, err := i.sched.ScheduleTeardown()
	if err != nil {
		i.registry.logf("warning: unmount of instance %d ignored: %v", i.id, err)
		return fmt.Errorf("unmount instance %d: %w", i.id, err)
	}
	if !run {
		return i.sched.Wait()
	}

	err = i.teardown()
	i.sched.release()

	return err
}

func (i *Instance) requestFromSetter() {
	if r, ok := LookupRuntime(); ok && r.batcher.IsBatching() {
		r.batcher.Defer(i)
		return
	}

	i.report(i.RequestUpdate())
}

// report hands errors of passes the driver did not start to the registry's handler.
func (i *Instance) report(err error) {
	if err == nil || errors.Is(err, ErrStaleInstance) {
		return
	}
	i.registry.handle(i.id, err)
}

func (i *Instance) drain() error {
	var errs []error

	passes := 0
	limited := false
	for {
		switch i.sched.next() {
		case stepIdle:
			return errors.Join(errs...)

		case stepTeardown:
			errs = append(errs, i.teardown())
			i.sched.release()
			return errors.Join(errs...)

		case stepPass:
			if i.sched.Fault() != nil {
				i.sched.drop()
				continue
			}

			passes++
			if passes > i.registry.config.PassLimit {
				i.sched.drop()
				if !limited {
					limited = true
					err := fmt.Errorf("instance %d: %w (%d)", i.id, ErrTooManyPasses, i.registry.config.PassLimit)
					i.registry.logf("%v", err)
					errs = append(errs, err)
				}
				continue
			}

			if _, err := i.pass(false); err != nil {
				errs = append(errs, err)
			}
		}
	}
}

// pass flushes queued updates and, on mount or when a value changed, renders and commits.
func (i *Instance) pass(mount bool) (bool, error) {
	if !mount && !i.state.Flush() {
		i.state.Commit()
		return false, nil
	}

	i.state.Begin()
	i.effects.Begin()
	i.digest.Reset()

	output, err := i.renderRecovered()
	if err == nil {
		err = i.state.End(i)
	}
	if err == nil {
		err = i.effects.End(i)
	}
	signature := i.digest.Sum64()
	if err == nil && !mount && signature != i.signature {
		err = &SlotOrderError{Instance: i.id, Want: -1, Got: -1}
	}

	if err != nil {
		i.state.Rollback()
		i.effects.Rollback()

		var orderErr *SlotOrderError
		if errors.As(err, &orderErr) {
			i.sched.fail(err)
		}
		i.registry.logf("instance %d: pass aborted: %v", i.id, err)
		return false, err
	}

	i.signature = signature
	i.state.Commit()
	i.sched.tick()

	err = i.effects.Commit(i)
	i.publish(output)
	if err != nil {
		i.registry.logf("%v", err)
		return true, err
	}

	return true, nil
}

func (i *Instance) renderRecovered() (output any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if orderErr, ok := r.(*SlotOrderError); ok {
				err = orderErr
				return
			}
			err = &RenderError{Instance: i.id, Value: r}
		}
	}()

	rt := GetRuntime()
	defer rt.release()

	rt.tracker.RunWithInstance(i, func() {
		output = i.render()
	})

	return output, nil
}

func (i *Instance) teardown() error {
	err := i.effects.Teardown(i)
	if err != nil {
		i.registry.logf("%v", err)
	}

	i.publish(i.Output())
	i.sched.unmounted(err)
	i.registry.remove(i.id)

	return err
}

func isRenderError(err error) bool {
	var renderErr *RenderError
	return errors.As(err, &renderErr)
}
