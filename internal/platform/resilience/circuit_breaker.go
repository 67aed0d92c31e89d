package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker trips after a streak of failures and recovers through a
// bounded set of half-open probe requests. Safe for concurrent use.
type CircuitBreaker struct {
	mu    sync.Mutex
	clock func() time.Time

	failureThreshold int
	openTimeout      time.Duration
	probeBudget      int

	state     CircuitState
	streak    int
	openedAt  time.Time
	probing   int
	probeWins int
}

func NewCircuitBreaker(failureThreshold int, openTimeout time.Duration, halfOpenMaxReq int) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if openTimeout <= 0 {
		openTimeout = 15 * time.Second
	}
	if halfOpenMaxReq < 1 {
		halfOpenMaxReq = 1
	}

	return &CircuitBreaker{
		clock:            time.Now,
		failureThreshold: failureThreshold,
		openTimeout:      openTimeout,
		probeBudget:      halfOpenMaxReq,
		state:            CircuitStateClosed,
	}
}

// Allow reports whether a request may proceed. While half-open, at most
// probeBudget requests are admitted at a time.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.maybeEnterHalfOpen()

	switch b.state {
	case CircuitStateOpen:
		return ErrCircuitOpen
	case CircuitStateHalfOpen:
		if b.probing >= b.probeBudget {
			return ErrCircuitOpen
		}
		b.probing++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.streak = 0
	case CircuitStateHalfOpen:
		if b.probing > 0 {
			b.probing--
		}
		b.probeWins++
		if b.probeWins >= b.probeBudget && b.probing == 0 {
			b.reset(CircuitStateClosed)
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.streak++
		if b.streak >= b.failureThreshold {
			b.reset(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		// One failed probe reopens the circuit for a full timeout.
		b.reset(CircuitStateOpen)
	case CircuitStateOpen:
		b.openedAt = b.clock()
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.clock().Sub(b.openedAt) >= b.openTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) maybeEnterHalfOpen() {
	if b.state != CircuitStateOpen {
		return
	}
	if b.clock().Sub(b.openedAt) >= b.openTimeout {
		b.reset(CircuitStateHalfOpen)
	}
}

// reset moves to the target state and clears all transient counters.
// Callers must hold the mutex.
func (b *CircuitBreaker) reset(state CircuitState) {
	b.state = state
	b.streak = 0
	b.probing = 0
	b.probeWins = 0
	if state == CircuitStateOpen {
		b.openedAt = b.clock()
	} else {
		b.openedAt = time.Time{}
	}
}
