// Package circuit tracks the health of an upstream from the outcomes of real calls.
package circuit

import "sync"

// State is the breaker position.
type State int

const (
	// StateClosed means recent calls are succeeding.
	StateClosed State = iota
	// StateOpen means FailureThreshold calls in a row failed.
	StateOpen
)

func (s State) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed"
}

// Breaker counts consecutive outcomes of calls to one upstream. It never
// rejects calls itself: callers read IsOpen to degrade readiness or alert.
// After FailureThreshold consecutive failures it opens; after
// SuccessThreshold consecutive successes while open it closes again.
type Breaker struct {
	mu               sync.Mutex
	state            State
	name             string
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
	onChange         func(name string, to State)
}

type Option func(*Breaker)

// WithFailureThreshold sets the consecutive failures that open the breaker. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.failureThreshold = n
		}
	}
}

// WithSuccessThreshold sets the consecutive successes that close an open breaker. Default 3.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.successThreshold = n
		}
	}
}

// OnStateChange registers fn to run after every transition, outside the lock.
func OnStateChange(fn func(name string, to State)) Option {
	return func(b *Breaker) {
		b.onChange = fn
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: 5,
		successThreshold: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *Breaker) Name() string {
	return b.name
}

func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Record counts one call outcome and reports whether the state changed.
func (b *Breaker) Record(success bool) bool {
	b.mu.Lock()
	changed := b.recordLocked(success)
	state, hook := b.state, b.onChange
	b.mu.Unlock()

	if changed && hook != nil {
		hook(b.name, state)
	}
	return changed
}

func (b *Breaker) recordLocked(success bool) bool {
	if success {
		b.failureCount = 0
		if b.state != StateOpen {
			return false
		}
		b.successCount++
		if b.successCount < b.successThreshold {
			return false
		}
		b.state, b.successCount = StateClosed, 0
		return true
	}

	b.successCount = 0
	b.failureCount++
	if b.state == StateOpen || b.failureCount < b.failureThreshold {
		return false
	}
	b.state = StateOpen
	return true
}

// Reset closes the breaker and clears its counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failureCount = 0
	b.successCount = 0
}
