package internal

import "slices"

type EffectSnapshot struct {
	Index   int    `yaml:"index" json:"index"`
	Deps    string `yaml:"deps" json:"deps"`
	Cleanup bool   `yaml:"cleanup" json:"cleanup"`
}

// Snapshot is a read-only view of an instance between passes.
type Snapshot struct {
	ID      ID               `yaml:"id" json:"id"`
	Phase   string           `yaml:"phase" json:"phase"`
	Passes  int              `yaml:"passes" json:"passes"`
	State   []any            `yaml:"state" json:"state"`
	Effects []EffectSnapshot `yaml:"effects" json:"effects"`
	Error   string           `yaml:"error,omitempty" json:"error,omitempty"`
}

// Snapshot reads the view published by the last commit, so it is safe while
// a pass runs on another goroutine.
func (i *Instance) Snapshot() Snapshot {
	i.mu.RLock()
	v := i.view
	i.mu.RUnlock()

	s := Snapshot{
		ID:      i.id,
		Phase:   i.Phase().String(),
		Passes:  v.passes,
		State:   slices.Clone(v.state),
		Effects: slices.Clone(v.effects),
	}

	if err := i.sched.Fault(); err != nil {
		s.Error = err.Error()
	}

	return s
}
