package internal

// Runtime holds the per-goroutine hook state: which instance is rendering and the batch in progress.
type Runtime struct {
	tracker *Tracker
	batcher *Batcher
}

func NewRuntime() *Runtime {
	return &Runtime{
		tracker: NewTracker(),
		batcher: NewBatcher(),
	}
}

func (r *Runtime) idle() bool {
	return r.tracker.CurrentInstance() == nil && !r.batcher.IsBatching() && r.batcher.deferred.Cardinality() == 0
}

// release forgets the goroutine's runtime once nothing uses it anymore,
// so goroutines started by effects do not leave one behind.
func (r *Runtime) release() {
	if r.idle() {
		forgetRuntime()
	}
}

// CurrentInstance returns the instance rendering on the calling goroutine.
// Hooks called anywhere else panic with ErrNoInstance.
func CurrentInstance() *Instance {
	r, ok := LookupRuntime()
	if !ok || r.tracker.CurrentInstance() == nil {
		panic(ErrNoInstance)
	}

	return r.tracker.CurrentInstance()
}

// Batch defers the update requests made by fn on this goroutine until fn returns.
func Batch(fn func()) {
	r := GetRuntime()
	defer r.release()

	r.Batch(fn)
}
