package internal

type queuedEffect struct {
	slot int
	fn   func()
}

// EffectQueue holds the work of one commit, split in stages that run one after the other.
type EffectQueue struct {
	effects map[EffectStage][]queuedEffect
}

func NewEffectQueue() *EffectQueue {
	effects := make(map[EffectStage][]queuedEffect)
	effects[StageCleanup] = make([]queuedEffect, 0)
	effects[StageBody] = make([]queuedEffect, 0)

	return &EffectQueue{effects}
}

func (q *EffectQueue) Enqueue(stage EffectStage, slot int, fn func()) {
	q.effects[stage] = append(q.effects[stage], queuedEffect{slot: slot, fn: fn})
}

func (q *EffectQueue) Len(stage EffectStage) int {
	return len(q.effects[stage])
}

// RunEffects runs every effect of the stage in enqueue order.
// A panicking effect is recovered and reported, the following ones still run.
func (q *EffectQueue) RunEffects(id ID, stage EffectStage) []error {
	effects := q.effects[stage]
	q.ClearEffects(stage)

	var errs []error
	for _, effect := range effects {
		if err := runRecovered(id, stage, effect); err != nil {
			errs = append(errs, err)
		}
	}

	return errs
}

func (q *EffectQueue) ClearEffects(stage EffectStage) {
	q.effects[stage] = q.effects[stage][:0]
}

func runRecovered(id ID, stage EffectStage, effect queuedEffect) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &EffectError{Instance: id, Slot: effect.slot, Stage: stage, Value: r}
		}
	}()

	effect.fn()
	return nil
}
