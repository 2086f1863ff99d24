package internal

import (
	"cmp"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

type Batcher struct {
	// each nested batch increases the depth by 1
	// if depth > 0, update requests are deferred until the outermost batch is complete
	depth int

	deferred mapset.Set[*Instance]
}

func NewBatcher() *Batcher {
	return &Batcher{
		depth:    0,
		deferred: mapset.NewThreadUnsafeSet[*Instance](),
	}
}

func (b *Batcher) IsBatching() bool {
	return b.depth > 0
}

func (b *Batcher) Defer(i *Instance) {
	b.deferred.Add(i)
}

// Take empties the deferred set and returns its instances in mount order.
func (b *Batcher) Take() []*Instance {
	instances := b.deferred.ToSlice()
	b.deferred.Clear()

	slices.SortFunc(instances, func(a, b *Instance) int {
		return cmp.Compare(a.id, b.id)
	})

	return instances
}

func (b *Batcher) Batch(fn, onComplete func()) {
	b.depth++
	defer func() {
		b.depth--
		if b.depth == 0 && onComplete != nil {
			onComplete()
		}
	}()

	fn()
}

func (r *Runtime) Batch(fn func()) {
	r.batcher.Batch(fn, r.flushDeferred)
}

func (r *Runtime) flushDeferred() {
	for _, i := range r.batcher.Take() {
		i.report(i.RequestUpdate())
	}
}
