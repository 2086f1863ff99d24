package internal

import (
	"fmt"
	"sync"
)

type Phase int

const (
	PhaseMounting Phase = iota
	PhaseUpdating
	PhaseUnmounting
	PhaseUnmounted
)

func (p Phase) String() string {
	switch p {
	case PhaseMounting:
		return "mounting"
	case PhaseUpdating:
		return "updating"
	case PhaseUnmounting:
		return "unmounting"
	case PhaseUnmounted:
		return "unmounted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

type step int

const (
	stepIdle step = iota
	stepPass
	stepTeardown
)

// Scheduler serializes the passes of one instance.
// Requests made while a pass runs only set a flag, the goroutine running the pass picks them up.
type Scheduler struct {
	mu sync.Mutex

	phase Phase

	// incremented each time a pass commits
	clock int

	scheduled bool
	running   bool
	teardown  bool

	// goroutine holding the running flag
	runner int64

	// set once a pass failed in a way that excludes the instance from further updates
	fault error

	// closed once the instance is unmounted, err is what its teardown returned
	done chan struct{}
	err  error
}

// NewScheduler returns a scheduler already running the mount pass on the calling goroutine.
func NewScheduler() *Scheduler {
	return &Scheduler{
		phase:   PhaseMounting,
		running: true,
		runner:  goroutineID(),
		done:    make(chan struct{}),
	}
}

func (s *Scheduler) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.phase
}

// unmounted closes the instance for good and wakes whoever waits for its teardown.
func (s *Scheduler) unmounted(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseUnmounted {
		return
	}
	s.phase = PhaseUnmounted
	s.err = err
	close(s.done)
}

// Wait blocks until the instance is unmounted and returns what its teardown returned.
// It returns nil right away on the goroutine holding the running flag, which
// does the teardown itself once its pass ends.
func (s *Scheduler) Wait() error {
	s.mu.Lock()
	self := s.running && s.runner == goroutineID()
	s.mu.Unlock()

	if self {
		return nil
	}

	<-s.done

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// mounted moves a mounting instance to updating, unless an unmount arrived during the mount pass.
func (s *Scheduler) mounted() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseMounting {
		s.phase = PhaseUpdating
	}
}

func (s *Scheduler) Fault() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fault
}

func (s *Scheduler) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fault = err
	s.scheduled = false
}

// Check returns the error a request would get: stale once unmounting, the fault once failed.
func (s *Scheduler) Check() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.check()
}

func (s *Scheduler) check() error {
	if s.phase >= PhaseUnmounting || s.teardown {
		return ErrStaleInstance
	}
	return s.fault
}

// Schedule marks a pass as wanted and reports whether the caller has to run it.
// Multiple calls before the pass runs collapse into one.
func (s *Scheduler) Schedule() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(); err != nil {
		return false, err
	}

	s.scheduled = true
	if s.running {
		return false, nil
	}

	s.running = true
	s.runner = goroutineID()
	return true, nil
}

// ScheduleTeardown drops any queued pass and reports whether the caller has to tear down now.
// While a pass runs, teardown is left to the goroutine running it.
func (s *Scheduler) ScheduleTeardown() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase >= PhaseUnmounting || s.teardown {
		return false, ErrStaleInstance
	}

	s.scheduled = false
	s.phase = PhaseUnmounting
	if s.running {
		s.teardown = true
		return false, nil
	}

	s.running = true
	s.runner = goroutineID()
	return true, nil
}

// next tells the running goroutine what to do. Returning stepIdle releases the running flag.
func (s *Scheduler) next() step {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.teardown {
		s.teardown = false
		return stepTeardown
	}

	if !s.scheduled {
		s.running = false
		return stepIdle
	}

	s.scheduled = false
	return stepPass
}

// drop forgets the queued pass, if any.
func (s *Scheduler) drop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduled = false
}

func (s *Scheduler) release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock++
}

// Time returns the number of committed passes.
func (s *Scheduler) Time() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clock
}
