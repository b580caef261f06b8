package resilience

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          50 * time.Millisecond,
		MaxHalfOpenCalls: 2,
	}
}

func tripBreaker(cb *CircuitBreaker, cfg CircuitBreakerConfig) {
	for i := 0; i < cfg.FailureThreshold; i++ {
		cb.RecordResult("test_op", errors.New("provider down"))
	}
}

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	cfg := testBreakerConfig()
	cb := NewCircuitBreaker("test", cfg)

	for i := 0; i < cfg.FailureThreshold-1; i++ {
		cb.RecordResult("test_op", errors.New("provider down"))
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("Expected closed below threshold, got %s", cb.GetState())
	}

	cb.RecordResult("test_op", errors.New("provider down"))
	if cb.GetState() != StateOpen {
		t.Errorf("Expected open at threshold, got %s", cb.GetState())
	}
}

func TestCircuitBreakerSuccessResetsFailureCount(t *testing.T) {
	cfg := testBreakerConfig()
	cb := NewCircuitBreaker("test", cfg)

	cb.RecordResult("test_op", errors.New("provider down"))
	cb.RecordResult("test_op", errors.New("provider down"))
	cb.RecordResult("test_op", nil)
	cb.RecordResult("test_op", errors.New("provider down"))
	cb.RecordResult("test_op", errors.New("provider down"))

	if cb.GetState() != StateClosed {
		t.Errorf("Expected closed after intervening success, got %s", cb.GetState())
	}
}

func TestCircuitBreakerRejectsWhenOpen(t *testing.T) {
	cfg := testBreakerConfig()
	cb := NewCircuitBreaker("test", cfg)
	tripBreaker(cb, cfg)

	called := false
	err := cb.Execute("test_op", func() error {
		called = true
		return nil
	})

	if err == nil {
		t.Fatal("Expected rejection while open")
	}
	if !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Errorf("Expected open-circuit error, got %q", err.Error())
	}
	if called {
		t.Error("Protected function must not run while the breaker is open")
	}
}

func TestCircuitBreakerHalfOpensAfterTimeout(t *testing.T) {
	cfg := testBreakerConfig()
	cb := NewCircuitBreaker("test", cfg)
	tripBreaker(cb, cfg)

	time.Sleep(cfg.Timeout + 10*time.Millisecond)

	if err := cb.Execute("test_op", func() error { return nil }); err != nil {
		t.Fatalf("Expected probe call after timeout, got error: %v", err)
	}
	if cb.GetState() != StateHalfOpen {
		t.Fatalf("Expected half-open after first probe success, got %s", cb.GetState())
	}

	if err := cb.Execute("test_op", func() error { return nil }); err != nil {
		t.Fatalf("Expected second probe call, got error: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("Expected closed after %d successes, got %s", cfg.SuccessThreshold, cb.GetState())
	}
}

func TestCircuitBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cfg := testBreakerConfig()
	cb := NewCircuitBreaker("test", cfg)
	tripBreaker(cb, cfg)

	time.Sleep(cfg.Timeout + 10*time.Millisecond)

	err := cb.Execute("test_op", func() error { return errors.New("still down") })
	if err == nil {
		t.Fatal("Expected the probe failure to propagate")
	}
	if cb.GetState() != StateOpen {
		t.Errorf("Expected reopen after half-open failure, got %s", cb.GetState())
	}
}

func TestCircuitBreakerHalfOpenCallLimit(t *testing.T) {
	cfg := testBreakerConfig()
	cfg.SuccessThreshold = 5 // keep the breaker half-open during the probes
	cb := NewCircuitBreaker("test", cfg)
	tripBreaker(cb, cfg)

	time.Sleep(cfg.Timeout + 10*time.Millisecond)

	// The transition call is admitted before the counter starts, so the
	// breaker allows MaxHalfOpenCalls+1 probes in total.
	for i := 0; i <= cfg.MaxHalfOpenCalls; i++ {
		if err := cb.Execute("test_op", func() error { return nil }); err != nil {
			t.Fatalf("Probe %d: expected call to be allowed, got %v", i+1, err)
		}
	}

	err := cb.Execute("test_op", func() error { return nil })
	if err == nil {
		t.Error("Expected rejection past the half-open call limit")
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cfg := testBreakerConfig()
	cfg.Enabled = false
	cb := NewCircuitBreaker("test", cfg)

	for i := 0; i < 100; i++ {
		cb.RecordResult("test_op", errors.New("provider down"))
	}

	if cb.GetState() != StateClosed {
		t.Errorf("Disabled breaker must always report closed, got %s", cb.GetState())
	}
	if err := cb.Execute("test_op", func() error { return nil }); err != nil {
		t.Errorf("Disabled breaker must never reject, got %v", err)
	}
}

func TestCircuitBreakerReset(t *testing.T) {
	cfg := testBreakerConfig()
	cb := NewCircuitBreaker("test", cfg)
	tripBreaker(cb, cfg)

	cb.Reset()

	if cb.GetState() != StateClosed {
		t.Fatalf("Expected closed after reset, got %s", cb.GetState())
	}
	if err := cb.Execute("test_op", func() error { return nil }); err != nil {
		t.Errorf("Expected calls allowed after reset, got %v", err)
	}
}

func TestCircuitStateString(t *testing.T) {
	tests := []struct {
		state CircuitState
		want  string
	}{
		{state: StateClosed, want: "closed"},
		{state: StateOpen, want: "open"},
		{state: StateHalfOpen, want: "half-open"},
		{state: CircuitState(99), want: "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}
