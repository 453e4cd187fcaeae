package throttle

import (
	"context"
	"fmt"
	"time"

	"kybernetes/internal/model"
)

const (
	// DefaultLimitPercent is the utilization level that engages the throttle.
	DefaultLimitPercent = 80.0
	// DefaultSampleWindow is how long one blocking measurement takes.
	DefaultSampleWindow = 500 * time.Millisecond
)

// Sampler measures CPU and memory utilization of the controller's own
// process. The call blocks for its sampling window.
type Sampler interface {
	Sample(ctx context.Context) (cpuPercent, memPercent float64, err error)
}

// Settings is the shared batch-size configuration. It is owned by the
// controller and passed by reference to every component that reads it; only
// the throttle mutates it. Reads happen at call time, never cached.
type Settings struct {
	batchSize int
}

// NewSettings validates the initial batch size.
func NewSettings(batchSize int) (*Settings, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be > 0, got %d", batchSize)
	}
	return &Settings{batchSize: batchSize}, nil
}

// BatchSize returns the current shared batch size.
func (s *Settings) BatchSize() int { return s.batchSize }

func (s *Settings) halve() {
	s.batchSize /= 2
	if s.batchSize < 1 {
		s.batchSize = 1
	}
}

// Throttle applies a hysteresis policy: when either CPU or memory crosses
// the limit and the throttle is disengaged, the shared batch size is halved
// once and the throttle engages (sticky). It disengages only when both fall
// back under the limit, allowing a later breach to halve again.
type Throttle struct {
	sampler  Sampler
	settings *Settings
	limit    float64
	engaged  bool
}

// New validates the sampler, shared settings, and utilization limit.
func New(sampler Sampler, settings *Settings, limitPercent float64) (*Throttle, error) {
	if sampler == nil {
		return nil, fmt.Errorf("sampler is required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	if limitPercent <= 0 || limitPercent >= 100 {
		return nil, fmt.Errorf("limit percent must be in (0,100), got %v", limitPercent)
	}
	return &Throttle{sampler: sampler, settings: settings, limit: limitPercent}, nil
}

// Engaged reports whether the throttle is currently sticky-engaged.
func (t *Throttle) Engaged() bool { return t.engaged }

// Adjust takes one blocking sample and applies the hysteresis policy.
// A sampling failure is returned to the caller, who treats it as a skipped
// adjustment rather than a failed generation.
func (t *Throttle) Adjust(ctx context.Context) (model.ResourceSample, error) {
	cpu, mem, err := t.sampler.Sample(ctx)
	if err != nil {
		return model.ResourceSample{}, fmt.Errorf("sample process resources: %w", err)
	}

	overloaded := cpu > t.limit || mem > t.limit
	switch {
	case overloaded && !t.engaged:
		t.settings.halve()
		t.engaged = true
	case !overloaded && t.engaged:
		t.engaged = false
	}

	return model.ResourceSample{
		CPUPercent:    cpu,
		MemoryPercent: mem,
		Throttled:     t.engaged,
	}, nil
}
