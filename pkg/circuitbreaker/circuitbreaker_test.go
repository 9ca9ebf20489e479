package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func failing() (interface{}, error)    { return nil, errBoom }
func succeeding() (interface{}, error) { return "ok", nil }

func TestTripsAfterConsecutiveFailures(t *testing.T) {
	cb := New(2, 1, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(failing); !errors.Is(err, errBoom) {
			t.Fatalf("expected underlying error, got %v", err)
		}
	}
	if cb.State() != Open {
		t.Fatalf("expected Open after %d failures, got %s", 2, cb.State())
	}

	if _, err := cb.Execute(succeeding); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen while open, got %v", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(2, 1, time.Minute)

	cb.Execute(failing)
	cb.Execute(succeeding)
	cb.Execute(failing)

	if cb.State() != Closed {
		t.Errorf("expected Closed, non-consecutive failures must not trip: %s", cb.State())
	}
}

func TestHalfOpenRecovery(t *testing.T) {
	cb := New(1, 2, 10*time.Millisecond)

	cb.Execute(failing)
	if cb.State() != Open {
		t.Fatalf("expected Open, got %s", cb.State())
	}

	time.Sleep(20 * time.Millisecond)

	// Two successful probes are required to close again.
	if _, err := cb.Execute(succeeding); err != nil {
		t.Fatalf("probe request should be allowed: %v", err)
	}
	if cb.State() != HalfOpen {
		t.Fatalf("expected HalfOpen after one probe, got %s", cb.State())
	}
	cb.Execute(succeeding)
	if cb.State() != Closed {
		t.Errorf("expected Closed after recovery, got %s", cb.State())
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(1, 1, 10*time.Millisecond)

	cb.Execute(failing)
	time.Sleep(20 * time.Millisecond)
	cb.Execute(failing)

	if cb.State() != Open {
		t.Errorf("expected Open after failed probe, got %s", cb.State())
	}
}
