package sequence

import (
	"sort"
	"sync"
	"time"
)

// Runner schedules a callback after a delay. The returned cancel function
// stops the callback if it has not fired yet.
type Runner interface {
	After(d time.Duration, fn func()) (cancel func())
}

type timerRunner struct{}

// NewRunner returns the wall-clock Runner backed by time.AfterFunc.
func NewRunner() Runner {
	return timerRunner{}
}

func (timerRunner) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// Manual is a Runner for tests. Callbacks fire only when the fake clock is
// advanced, so timing-dependent state machines can be exercised without
// wall-clock waits.
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  int
	pending []*manualCall
}

type manualCall struct {
	id       int
	deadline time.Duration
	fn       func()
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) After(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	call := &manualCall{id: m.nextID, deadline: m.now + d, fn: fn}
	m.pending = append(m.pending, call)
	id := call.id
	return func() { m.remove(id) }
}

func (m *Manual) remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, call := range m.pending {
		if call.id == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return
		}
	}
}

// Advance moves the fake clock forward and fires every due callback in
// deadline order. Callbacks may schedule further callbacks; those fire too if
// they fall within the advanced window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()

	for {
		call := m.popDue()
		if call == nil {
			return
		}
		call.fn()
	}
}

func (m *Manual) popDue() *manualCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	sort.SliceStable(m.pending, func(i, j int) bool {
		if m.pending[i].deadline != m.pending[j].deadline {
			return m.pending[i].deadline < m.pending[j].deadline
		}
		return m.pending[i].id < m.pending[j].id
	})
	if len(m.pending) == 0 || m.pending[0].deadline > m.now {
		return nil
	}
	call := m.pending[0]
	m.pending = m.pending[1:]
	return call
}

// PendingCount reports how many callbacks are scheduled but not yet fired.
func (m *Manual) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
