package internal

type Tracker struct {
	// the instance whose render function is running on this goroutine
	currentInstance *Instance
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) RunWithInstance(instance *Instance, fn func()) {
	prev := t.currentInstance
	t.currentInstance = instance
	defer func() { t.currentInstance = prev }()

	fn()
}

func (t *Tracker) CurrentInstance() *Instance {
	return t.currentInstance
}
