package throttle

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessSampler measures the current process through gopsutil. The CPU
// measurement blocks for the configured window; memory is read point-in-time.
type ProcessSampler struct {
	proc   *process.Process
	window time.Duration
}

// NewProcessSampler resolves the controller's own PID. A zero window uses
// DefaultSampleWindow.
func NewProcessSampler(window time.Duration) (*ProcessSampler, error) {
	if window <= 0 {
		window = DefaultSampleWindow
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("resolve own process: %w", err)
	}
	return &ProcessSampler{proc: proc, window: window}, nil
}

func (s *ProcessSampler) Sample(ctx context.Context) (float64, float64, error) {
	cpu, err := s.proc.PercentWithContext(ctx, s.window)
	if err != nil {
		return 0, 0, fmt.Errorf("cpu percent: %w", err)
	}
	mem, err := s.proc.MemoryPercentWithContext(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("memory percent: %w", err)
	}
	return cpu, float64(mem), nil
}
