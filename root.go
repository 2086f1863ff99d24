package hooks

import (
	"log"

	"github.com/AnatoleLucet/hooks/internal"
)

type ID = internal.ID

type Phase = internal.Phase

const (
	Mounting   = internal.PhaseMounting
	Updating   = internal.PhaseUpdating
	Unmounting = internal.PhaseUnmounting
	Unmounted  = internal.PhaseUnmounted
)

type Snapshot = internal.Snapshot

type EffectSnapshot = internal.EffectSnapshot

type Option func(*internal.Config)

// WithLogger sets where warnings and recovered failures are logged. Nothing is logged by default.
func WithLogger(logger *log.Logger) Option {
	return func(c *internal.Config) {
		c.Logger = logger
	}
}

// WithPassLimit bounds how many passes in a row a single request may cause.
func WithPassLimit(n int) Option {
	return func(c *internal.Config) {
		c.PassLimit = n
	}
}

// WithErrorHandler receives the errors of passes started by setters.
// Without one they are logged.
func WithErrorHandler(fn func(ID, error)) Option {
	return func(c *internal.Config) {
		c.OnError = fn
	}
}

// Root owns a set of mounted components.
type Root struct {
	registry *internal.Registry
}

func NewRoot(opts ...Option) *Root {
	var config internal.Config
	for _, opt := range opts {
		opt(&config)
	}

	return &Root{internal.NewRegistry(config)}
}

// Update requests a pass of the component. Requests coalesce.
func (r *Root) Update(id ID) error { return r.registry.Update(id) }

// Unmount runs the component's cleanups and forgets it. When a pass runs on
// another goroutine, it waits for that pass to end and tear the component down.
func (r *Root) Unmount(id ID) error { return r.registry.Unmount(id) }

// Snapshot describes the state of a mounted component.
func (r *Root) Snapshot(id ID) (Snapshot, error) {
	i, err := r.registry.Lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	return i.Snapshot(), nil
}

// Mounted returns the ids of the mounted components, in mount order.
func (r *Root) Mounted() []ID { return r.registry.IDs() }

// Dispose unmounts every component of the root. Unless called from a pass of one
// of them, all cleanups have run when it returns.
func (r *Root) Dispose() error { return r.registry.Dispose() }

// Component is a mounted render function.
type Component[T any] struct {
	instance *internal.Instance
}

// Mount renders the function once and runs its effects.
// The component is nil if the first render failed. A non-nil component with an
// error means the render succeeded but some effects failed.
func Mount[T any](r *Root, render func() T) (*Component[T], error) {
	i, err := r.registry.Mount(func() any { return render() })
	if i == nil {
		return nil, err
	}

	return &Component[T]{i}, err
}

func (c *Component[T]) ID() ID { return c.instance.ID() }

// Output returns the output of the last committed render.
func (c *Component[T]) Output() T { return as[T](c.instance.Output()) }

func (c *Component[T]) Phase() Phase { return c.instance.Phase() }

// Passes returns how many times the component rendered and committed.
func (c *Component[T]) Passes() int { return c.instance.Passes() }

// Update runs a pass if updates are queued. A pass in flight picks them up instead.
func (c *Component[T]) Update() error { return c.instance.RequestUpdate() }

// Unmount behaves as Root.Unmount. Called from the component's own render or
// effects it returns at once, the teardown follows the current pass.
func (c *Component[T]) Unmount() error { return c.instance.Unmount() }

func (c *Component[T]) Snapshot() Snapshot { return c.instance.Snapshot() }
