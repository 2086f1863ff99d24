package internal

import (
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"sync"
)

const DefaultPassLimit = 50

// Discard is a Logger that ignores all loggings.
var Discard = log.New(io.Discard, "", 0)

type Config struct {
	Logger *log.Logger

	// maximum number of consecutive passes a single request may cause
	PassLimit int

	// receives errors of passes started by setters rather than by the driver
	OnError func(ID, error)
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = Discard
	}
	if c.PassLimit <= 0 {
		c.PassLimit = DefaultPassLimit
	}
	return c
}

// Registry is the identity map of mounted instances.
type Registry struct {
	mu sync.Mutex

	config Config

	next      ID
	instances map[ID]*Instance
}

func NewRegistry(config Config) *Registry {
	return &Registry{
		config:    config.withDefaults(),
		instances: make(map[ID]*Instance),
	}
}

// Mount creates an instance and runs its mount pass.
// The instance is nil when the mount pass failed, an error with a non-nil instance comes from effects.
func (r *Registry) Mount(render func() any) (*Instance, error) {
	r.mu.Lock()
	r.next++
	i := newInstance(r.next, r, render)
	r.instances[i.id] = i
	r.mu.Unlock()

	err := i.mount()
	if i.Phase() == PhaseUnmounted && i.Passes() == 0 {
		return nil, err
	}

	return i, err
}

func (r *Registry) Lookup(id ID) (*Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.instances[id]
	if ok {
		return i, nil
	}

	// ids are never reused, anything below next was mounted once
	if id > 0 && id <= r.next {
		return nil, fmt.Errorf("instance %d: %w", id, ErrStaleInstance)
	}
	return nil, fmt.Errorf("instance %d: %w", id, ErrUnknownInstance)
}

func (r *Registry) Update(id ID) error {
	i, err := r.Lookup(id)
	if err != nil {
		r.logf("warning: update ignored: %v", err)
		return err
	}

	return i.RequestUpdate()
}

func (r *Registry) Unmount(id ID) error {
	i, err := r.Lookup(id)
	if err != nil {
		r.logf("warning: unmount ignored: %v", err)
		return err
	}

	return i.Unmount()
}

// IDs returns the ids of the mounted instances in mount order.
func (r *Registry) IDs() []ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]ID, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ids
}

// Dispose unmounts every instance, in mount order.
func (r *Registry) Dispose() error {
	var errs []error
	for _, id := range r.IDs() {
		i, err := r.Lookup(id)
		if err != nil {
			continue
		}
		if err := i.Unmount(); err != nil && !errors.Is(err, ErrStaleInstance) {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (r *Registry) remove(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.instances, id)
}

func (r *Registry) logf(format string, args ...any) {
	r.config.Logger.Printf("hooks: "+format, args...)
}

func (r *Registry) handle(id ID, err error) {
	if r.config.OnError != nil {
		r.config.OnError(id, err)
		return
	}
	r.logf("instance %d: %v", id, err)
}
