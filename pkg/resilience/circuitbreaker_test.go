package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/trailhead/trailhead/pkg/resilience"
)

var errDown = errors.New("backend down")

func fail() error    { return errDown }
func succeed() error { return nil }

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		if err := cb.Execute(fail); !errors.Is(err, errDown) {
			t.Fatalf("call %d: error = %v, want the underlying failure", i, err)
		}
	}
	if cb.GetState() != resilience.StateOpen {
		t.Fatalf("state = %s, want open", cb.GetState())
	}
	if err := cb.Execute(succeed); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("error = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerStaysClosedBelowThreshold(t *testing.T) {
	cb := resilience.NewCircuitBreaker(3, time.Minute)

	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	if err := cb.Execute(succeed); err != nil {
		t.Fatalf("error = %v", err)
	}
	if cb.GetState() != resilience.StateClosed {
		t.Fatalf("state = %s, want closed", cb.GetState())
	}

	// The success reset the count: two more failures stay below threshold.
	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	if cb.GetState() != resilience.StateClosed {
		t.Fatalf("state = %s, failure count should have reset", cb.GetState())
	}
}

func TestBreakerProbeClosesOnSuccess(t *testing.T) {
	cb := resilience.NewCircuitBreaker(1, 10*time.Millisecond)

	_ = cb.Execute(fail)
	if cb.GetState() != resilience.StateOpen {
		t.Fatalf("state = %s, want open", cb.GetState())
	}

	time.Sleep(20 * time.Millisecond)

	if err := cb.Execute(succeed); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if cb.GetState() != resilience.StateClosed {
		t.Fatalf("state = %s, probe success must close", cb.GetState())
	}
}

func TestBreakerProbeReopensOnFailure(t *testing.T) {
	cb := resilience.NewCircuitBreaker(1, 10*time.Millisecond)

	_ = cb.Execute(fail)
	time.Sleep(20 * time.Millisecond)

	if err := cb.Execute(fail); !errors.Is(err, errDown) {
		t.Fatalf("probe error = %v", err)
	}
	if cb.GetState() != resilience.StateOpen {
		t.Fatalf("state = %s, probe failure must reopen", cb.GetState())
	}
	if err := cb.Execute(succeed); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("error = %v, want ErrCircuitOpen right after reopening", err)
	}
}

func TestBreakerReset(t *testing.T) {
	cb := resilience.NewCircuitBreaker(1, time.Minute)

	_ = cb.Execute(fail)
	if cb.GetState() != resilience.StateOpen {
		t.Fatalf("state = %s, want open", cb.GetState())
	}

	cb.Reset()
	if cb.GetState() != resilience.StateClosed {
		t.Fatalf("state = %s after reset", cb.GetState())
	}
	if err := cb.Execute(succeed); err != nil {
		t.Fatalf("error after reset: %v", err)
	}
}

func TestStateString(t *testing.T) {
	cases := map[resilience.State]string{
		resilience.StateClosed:   "closed",
		resilience.StateOpen:     "open",
		resilience.StateHalfOpen: "half-open",
		resilience.State(99):     "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
