package redis

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func fail() error { return errBoom }
func ok() error   { return nil }

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Hour)

	for i := 0; i < 3; i++ {
		if err := cb.Do(fail); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: got %v, want errBoom", i, err)
		}
	}
	if cb.CurrentState() != StateOpen {
		t.Fatalf("state: got %s, want open", cb.CurrentState())
	}

	if err := cb.Do(ok); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker: got %v, want ErrCircuitOpen", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Hour)

	cb.Do(fail)
	cb.Do(fail)
	cb.Do(ok)
	cb.Do(fail)
	cb.Do(fail)

	if cb.CurrentState() != StateClosed {
		t.Fatalf("state: got %s, want closed (streak broken)", cb.CurrentState())
	}
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)

	cb.Do(fail)
	if cb.CurrentState() != StateOpen {
		t.Fatalf("state after trip: got %s, want open", cb.CurrentState())
	}

	time.Sleep(20 * time.Millisecond)

	// Probe fails: reopen.
	if err := cb.Do(fail); !errors.Is(err, errBoom) {
		t.Fatalf("probe: got %v, want errBoom", err)
	}
	if cb.CurrentState() != StateOpen {
		t.Fatalf("state after failed probe: got %s, want open", cb.CurrentState())
	}

	time.Sleep(20 * time.Millisecond)

	// Probe succeeds: close.
	if err := cb.Do(ok); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if cb.CurrentState() != StateClosed {
		t.Fatalf("state after good probe: got %s, want closed", cb.CurrentState())
	}
}

func TestBreaker_StateChangeCallback(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)

	var transitions []string
	cb.OnStateChange = func(from, to State) {
		transitions = append(transitions, from.String()+">"+to.String())
	}

	cb.Do(fail)
	time.Sleep(20 * time.Millisecond)
	cb.Do(ok)

	want := []string{"closed>open", "open>half-open", "half-open>closed"}
	if len(transitions) != len(want) {
		t.Fatalf("transitions: got %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transition %d: got %s, want %s", i, transitions[i], want[i])
		}
	}
}
