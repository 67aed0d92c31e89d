package resilience

import "sync"

// SingleFlight collapses concurrent calls for the same key into one
// execution. Followers block until the leader's result is ready.
type SingleFlight struct {
	mu     sync.Mutex
	flight map[string]*flightResult
}

type flightResult struct {
	done chan struct{}
	val  any
	err  error
}

// Do runs fn once per key at a time. The bool reports whether the result
// was shared from another caller's execution.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.flight == nil {
		g.flight = make(map[string]*flightResult)
	}
	if r, ok := g.flight[key]; ok {
		g.mu.Unlock()
		<-r.done
		return r.val, r.err, true
	}

	r := &flightResult{done: make(chan struct{})}
	g.flight[key] = r
	g.mu.Unlock()

	r.val, r.err = fn()

	g.mu.Lock()
	delete(g.flight, key)
	g.mu.Unlock()
	close(r.done)

	return r.val, r.err, false
}
