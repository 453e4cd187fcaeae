package degrade

import (
	"errors"
	"fmt"
)

// DefaultThreshold is the relative drop fraction that triggers a reset.
const DefaultThreshold = 0.05

// BaselineUnset marks a run whose first evaluation has not happened yet.
// Degradation checks are skipped until a real baseline exists.
const BaselineUnset = -1.0

// ErrNoBaseline reports a degradation check before any baseline was set.
var ErrNoBaseline = errors.New("baseline not yet established")

// Result reports one degradation check.
type Result struct {
	Degraded     bool
	DropFraction float64
}

// Monitor compares a current best score against a persisted baseline.
type Monitor struct {
	threshold float64
}

// NewMonitor validates the relative-drop threshold.
func NewMonitor(threshold float64) (*Monitor, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("degradation threshold must be > 0, got %v", threshold)
	}
	return &Monitor{threshold: threshold}, nil
}

// Check computes drop = (baseline - current) / baseline and reports
// degradation when the drop exceeds the threshold. The baseline must be
// strictly positive for the relative comparison to be meaningful.
func (m *Monitor) Check(baseline, current float64) (Result, error) {
	if baseline == BaselineUnset {
		return Result{}, ErrNoBaseline
	}
	if baseline <= 0 {
		return Result{}, fmt.Errorf("baseline must be > 0 for a relative check, got %v", baseline)
	}
	drop := (baseline - current) / baseline
	return Result{Degraded: drop > m.threshold, DropFraction: drop}, nil
}
