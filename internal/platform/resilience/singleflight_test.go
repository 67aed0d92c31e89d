package resilience

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_DeduplicatesConcurrentCalls(t *testing.T) {
	var flight SingleFlight
	var executions atomic.Int32

	release := make(chan struct{})
	leaderRunning := make(chan struct{})

	go func() {
		_, _, _ = flight.Do("players", func() (any, error) {
			close(leaderRunning)
			<-release
			executions.Add(1)
			return 42, nil
		})
	}()
	<-leaderRunning

	const followers = 5
	var wg sync.WaitGroup
	results := make([]any, followers)
	shared := make([]bool, followers)
	for i := 0; i < followers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _, shared[i] = flight.Do("players", func() (any, error) {
				executions.Add(1)
				return 42, nil
			})
		}(i)
	}

	// Give the followers a moment to join the in-flight call.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := executions.Load(); got != 1 {
		t.Fatalf("expected 1 execution, got %d", got)
	}
	for i := 0; i < followers; i++ {
		if results[i] != 42 {
			t.Fatalf("follower %d got %v", i, results[i])
		}
		if !shared[i] {
			t.Fatalf("follower %d expected a shared result", i)
		}
	}
}

func TestSingleFlight_ErrorsPropagateToFollowers(t *testing.T) {
	var flight SingleFlight
	wantErr := errors.New("feed down")

	_, err, shared := flight.Do("players", func() (any, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) || shared {
		t.Fatalf("expected leader error, got err=%v shared=%v", err, shared)
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	var flight SingleFlight

	a, _, _ := flight.Do("a", func() (any, error) { return "a", nil })
	b, _, _ := flight.Do("b", func() (any, error) { return "b", nil })

	if a != "a" || b != "b" {
		t.Fatalf("unexpected results: %v %v", a, b)
	}
}

func TestSingleFlight_KeyReusableAfterCompletion(t *testing.T) {
	var flight SingleFlight
	var executions atomic.Int32

	for i := 0; i < 2; i++ {
		if _, _, shared := flight.Do("players", func() (any, error) {
			executions.Add(1)
			return nil, nil
		}); shared {
			t.Fatalf("sequential call %d must not be shared", i)
		}
	}
	if got := executions.Load(); got != 2 {
		t.Fatalf("expected 2 executions, got %d", got)
	}
}
