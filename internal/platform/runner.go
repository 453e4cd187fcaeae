package platform

import (
	"context"
	"fmt"
	"time"
)

// RunnerPolicy bounds restart behavior for a supervised loop.
type RunnerPolicy struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	// MaxRestarts caps restarts across the whole run; zero disables
	// restarts entirely and the first failure is final.
	MaxRestarts int
}

// RunnerHooks observes restart activity.
type RunnerHooks struct {
	OnRestart          func(generation int, err error, restartCount int)
	OnPermanentFailure func(generation int, err error, restartCount int)
}

func defaultRunnerPolicy() RunnerPolicy {
	return RunnerPolicy{
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     200 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func normalizeRunnerPolicy(policy RunnerPolicy) RunnerPolicy {
	def := defaultRunnerPolicy()
	if policy.InitialBackoff <= 0 {
		policy.InitialBackoff = def.InitialBackoff
	}
	if policy.MaxBackoff <= 0 {
		policy.MaxBackoff = def.MaxBackoff
	}
	if policy.MaxBackoff < policy.InitialBackoff {
		policy.MaxBackoff = policy.InitialBackoff
	}
	if policy.BackoffFactor < 1 {
		policy.BackoffFactor = def.BackoffFactor
	}
	return policy
}

// Runner drives a generation step function until the externally supplied
// budget is spent, restarting after transient failures with exponential
// backoff. The loop itself stays single-threaded; supervision only decides
// whether a failed generation is retried.
type Runner struct {
	policy RunnerPolicy
	hooks  RunnerHooks
}

func NewRunner(policy RunnerPolicy) *Runner {
	return NewRunnerWithHooks(policy, RunnerHooks{})
}

func NewRunnerWithHooks(policy RunnerPolicy, hooks RunnerHooks) *Runner {
	return &Runner{policy: normalizeRunnerPolicy(policy), hooks: hooks}
}

// Run executes step once per generation, generations times. A step error
// consumes one restart and retries the same generation after backoff; when
// restarts are exhausted the error is returned.
func (r *Runner) Run(ctx context.Context, generations int, step func(ctx context.Context) error) error {
	if generations <= 0 {
		return fmt.Errorf("generation budget must be > 0, got %d", generations)
	}
	if step == nil {
		return fmt.Errorf("step function is required")
	}

	backoff := r.policy.InitialBackoff
	restarts := 0
	for gen := 1; gen <= generations; gen++ {
		for {
			err := step(ctx)
			if err == nil {
				break
			}
			if ctx.Err() != nil {
				return err
			}
			if restarts >= r.policy.MaxRestarts {
				if r.hooks.OnPermanentFailure != nil {
					r.hooks.OnPermanentFailure(gen, err, restarts)
				}
				return fmt.Errorf("generation %d failed after %d restarts: %w", gen, restarts, err)
			}
			restarts++
			if r.hooks.OnRestart != nil {
				r.hooks.OnRestart(gen, err, restarts)
			}

			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			next := time.Duration(float64(backoff) * r.policy.BackoffFactor)
			if next > r.policy.MaxBackoff {
				next = r.policy.MaxBackoff
			}
			backoff = next
		}
	}
	return nil
}
