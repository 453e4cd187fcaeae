package dataset

import (
	"context"
	"fmt"
)

// Matrix is a row-major feature matrix. Rows are observations, columns are
// feature dimensions. All rows must share the same width.
type Matrix [][]float64

// Rows returns the observation count.
func (m Matrix) Rows() int { return len(m) }

// Cols returns the feature dimensionality, zero for an empty matrix.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Column copies feature column j into a new slice.
func (m Matrix) Column(j int) ([]float64, error) {
	if j < 0 || j >= m.Cols() {
		return nil, fmt.Errorf("column %d out of range [0,%d)", j, m.Cols())
	}
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = row[j]
	}
	return out, nil
}

// Validate checks rectangular shape.
func (m Matrix) Validate() error {
	if len(m) == 0 {
		return nil
	}
	width := len(m[0])
	for i, row := range m {
		if len(row) != width {
			return fmt.Errorf("ragged matrix: row %d has %d columns, want %d", i, len(row), width)
		}
	}
	return nil
}

// Dataset pairs features with target labels, aligned by row.
type Dataset struct {
	Features Matrix
	Labels   []float64
}

// Validate checks shape and feature/label alignment.
func (d Dataset) Validate() error {
	if err := d.Features.Validate(); err != nil {
		return err
	}
	if len(d.Labels) != d.Features.Rows() {
		return fmt.Errorf("label count mismatch: got=%d want=%d", len(d.Labels), d.Features.Rows())
	}
	return nil
}

// Empty reports whether the dataset carries no observations.
func (d Dataset) Empty() bool { return d.Features.Rows() == 0 }

// Provider supplies training batches and a validation split. The controller
// never fetches or parses raw data itself; implementations own ingestion.
type Provider interface {
	// TrainingBatch returns up to batchSize rows of fresh training data.
	TrainingBatch(ctx context.Context, batchSize int) (Dataset, error)
	// Validation returns the held-out validation split.
	Validation(ctx context.Context) (Dataset, error)
}
