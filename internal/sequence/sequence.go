// Package sequence provides delayed one-shot scheduling and multi-phase
// sequences for the tour state machines: transition settle delays, activation
// cooldowns and door debounce windows all run through a Runner so tests can
// drive them with a fake clock.
package sequence

import (
	"sync"
	"time"
)

// Step is one phase of a sequence: wait Delay, then run Action.
type Step struct {
	Delay  time.Duration
	Action func()
}

// Sequencer runs an ordered list of steps, one pending timer at a time.
// Cancel stops the remaining steps; a cancelled or finished sequencer can be
// started again.
type Sequencer struct {
	mu     sync.Mutex
	runner Runner
	cancel func()
	active bool
	run    int // incremented per Start/Cancel to invalidate stale callbacks
}

func NewSequencer(runner Runner) *Sequencer {
	return &Sequencer{runner: runner}
}

// Start begins running steps in order. It reports false without side effects
// if a sequence is already in flight.
func (s *Sequencer) Start(steps ...Step) bool {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return false
	}
	s.active = true
	s.run++
	run := s.run
	s.mu.Unlock()

	s.schedule(run, steps)
	return true
}

func (s *Sequencer) schedule(run int, steps []Step) {
	if len(steps) == 0 {
		s.mu.Lock()
		if s.run == run {
			s.active = false
			s.cancel = nil
		}
		s.mu.Unlock()
		return
	}

	step := steps[0]
	rest := steps[1:]
	cancel := s.runner.After(step.Delay, func() {
		s.mu.Lock()
		stale := s.run != run
		s.mu.Unlock()
		if stale {
			return
		}
		if step.Action != nil {
			step.Action()
		}
		s.schedule(run, rest)
	})

	s.mu.Lock()
	if s.run == run {
		s.cancel = cancel
	} else {
		s.mu.Unlock()
		cancel()
		return
	}
	s.mu.Unlock()
}

// Cancel stops any pending step. Already-executed actions are not undone.
func (s *Sequencer) Cancel() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.active = false
	s.run++
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Active reports whether a sequence has steps left to run.
func (s *Sequencer) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
