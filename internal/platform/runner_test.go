package platform

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy(maxRestarts int) RunnerPolicy {
	return RunnerPolicy{
		InitialBackoff: time.Microsecond,
		MaxBackoff:     time.Microsecond,
		BackoffFactor:  2.0,
		MaxRestarts:    maxRestarts,
	}
}

func TestRunValidatesBudget(t *testing.T) {
	runner := NewRunner(fastPolicy(0))
	if err := runner.Run(context.Background(), 0, func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected error for zero generation budget")
	}
	if err := runner.Run(context.Background(), 3, nil); err == nil {
		t.Fatal("expected error for missing step function")
	}
}

func TestRunExecutesBudgetInOrder(t *testing.T) {
	runner := NewRunner(fastPolicy(0))
	steps := 0
	err := runner.Run(context.Background(), 5, func(context.Context) error {
		steps++
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if steps != 5 {
		t.Fatalf("executed %d steps, want 5", steps)
	}
}

func TestRunRetriesFailedGeneration(t *testing.T) {
	var restarted []int
	runner := NewRunnerWithHooks(fastPolicy(2), RunnerHooks{
		OnRestart: func(gen int, _ error, _ int) {
			restarted = append(restarted, gen)
		},
	})

	attempts := 0
	err := runner.Run(context.Background(), 2, func(context.Context) error {
		attempts++
		// The first attempt of the second generation fails once.
		if attempts == 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts for 2 generations, got %d", attempts)
	}
	if len(restarted) != 1 || restarted[0] != 2 {
		t.Fatalf("expected one restart of generation 2, got %v", restarted)
	}
}

func TestRunFailsWhenRestartsExhausted(t *testing.T) {
	permanent := 0
	runner := NewRunnerWithHooks(fastPolicy(1), RunnerHooks{
		OnPermanentFailure: func(int, error, int) { permanent++ },
	})

	stepErr := errors.New("persistent")
	err := runner.Run(context.Background(), 3, func(context.Context) error {
		return stepErr
	})
	if err == nil {
		t.Fatal("expected error once restarts are exhausted")
	}
	if !errors.Is(err, stepErr) {
		t.Fatalf("error must wrap the step failure, got %v", err)
	}
	if permanent != 1 {
		t.Fatalf("expected one permanent-failure hook call, got %d", permanent)
	}
}

func TestRunStopsOnContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(fastPolicy(100))

	attempts := 0
	err := runner.Run(ctx, 10, func(context.Context) error {
		attempts++
		if attempts == 2 {
			cancel()
			return ctx.Err()
		}
		return nil
	})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if attempts != 2 {
		t.Fatalf("expected the loop to stop after cancellation, got %d attempts", attempts)
	}
}

func TestNormalizePolicyFillsDefaults(t *testing.T) {
	policy := normalizeRunnerPolicy(RunnerPolicy{})
	if policy.InitialBackoff <= 0 || policy.MaxBackoff <= 0 {
		t.Fatalf("defaults not applied: %+v", policy)
	}
	if policy.BackoffFactor < 1 {
		t.Fatalf("backoff factor not normalized: %v", policy.BackoffFactor)
	}

	policy = normalizeRunnerPolicy(RunnerPolicy{
		InitialBackoff: time.Second,
		MaxBackoff:     time.Millisecond,
	})
	if policy.MaxBackoff != time.Second {
		t.Fatalf("max backoff must be raised to the initial backoff, got %v", policy.MaxBackoff)
	}
}
