package candidate

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"kybernetes/internal/dataset"
)

const (
	mutationNoiseMagnitude = 0.1
	trainLearningRate      = 0.01
)

// Vector is a reference Candidate over a flat weight buffer. It scores a
// linear predictor (weights[:n] dot features, plus a trailing bias term)
// by mean squared error and trains with one stochastic gradient pass.
type Vector struct {
	id      string
	weights []float64
}

// NewVector builds a candidate with dim feature weights plus a bias term,
// initialized from rng. Structural errors here are fatal: the evolutionary
// loop assumes every candidate it receives is well formed.
func NewVector(rng *rand.Rand, dim int) (*Vector, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if dim <= 0 {
		return nil, fmt.Errorf("feature dimension must be > 0, got %d", dim)
	}
	weights := make([]float64, dim+1)
	for i := range weights {
		weights[i] = rng.NormFloat64() * 0.5
	}
	return &Vector{id: uuid.NewString(), weights: weights}, nil
}

func (v *Vector) ID() string { return v.id }

// Weights exposes a copy of the buffer for inspection; the backing array
// is never shared.
func (v *Vector) Weights() []float64 {
	out := make([]float64, len(v.weights))
	copy(out, v.weights)
	return out
}

func (v *Vector) Clone() Candidate {
	weights := make([]float64, len(v.weights))
	copy(weights, v.weights)
	return &Vector{id: uuid.NewString(), weights: weights}
}

func (v *Vector) Mutate(rng *rand.Rand, rate float64) {
	if rng == nil || rate <= 0 {
		return
	}
	for i := range v.weights {
		if rng.Float64() < rate {
			v.weights[i] += rng.NormFloat64() * mutationNoiseMagnitude
		}
	}
}

func (v *Vector) Crossover(rng *rand.Rand, other Candidate, bias float64) (Candidate, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	mate, ok := other.(*Vector)
	if !ok {
		return nil, fmt.Errorf("%w: %T with %T", ErrIncompatible, v, other)
	}
	if len(mate.weights) != len(v.weights) {
		return nil, fmt.Errorf("weight length mismatch: got=%d want=%d", len(mate.weights), len(v.weights))
	}
	if bias < 0 || bias > 1 {
		return nil, fmt.Errorf("crossover bias must be in [0,1], got %v", bias)
	}

	weights := make([]float64, len(v.weights))
	for i := range weights {
		if rng.Float64() < bias {
			weights[i] = v.weights[i]
		} else {
			weights[i] = mate.weights[i]
		}
	}
	return &Vector{id: uuid.NewString(), weights: weights}, nil
}

func (v *Vector) Train(ctx context.Context, data dataset.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := v.checkShape(data); err != nil {
		return err
	}
	for i, row := range data.Features {
		pred := v.predict(row)
		residual := pred - data.Labels[i]
		for j, x := range row {
			v.weights[j] -= trainLearningRate * residual * x
		}
		v.weights[len(v.weights)-1] -= trainLearningRate * residual
	}
	return nil
}

func (v *Vector) Evaluate(ctx context.Context, data dataset.Dataset) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if data.Empty() {
		return 0, ErrNoData
	}
	if err := v.checkShape(data); err != nil {
		return 0, err
	}

	total := 0.0
	for i, row := range data.Features {
		residual := v.predict(row) - data.Labels[i]
		total += residual * residual
	}
	mse := total / float64(data.Features.Rows())
	if math.IsNaN(mse) || math.IsInf(mse, 0) {
		return 0, fmt.Errorf("numerical error: score is not finite")
	}
	return mse, nil
}

func (v *Vector) Distance(other Candidate) (float64, error) {
	peer, ok := other.(*Vector)
	if !ok {
		return 0, fmt.Errorf("%w: %T with %T", ErrIncompatible, v, other)
	}
	if len(peer.weights) != len(v.weights) {
		return 0, fmt.Errorf("weight length mismatch: got=%d want=%d", len(peer.weights), len(v.weights))
	}
	sum := 0.0
	for i := range v.weights {
		d := v.weights[i] - peer.weights[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

func (v *Vector) predict(row []float64) float64 {
	out := v.weights[len(v.weights)-1]
	for j, x := range row {
		out += v.weights[j] * x
	}
	return out
}

func (v *Vector) checkShape(data dataset.Dataset) error {
	if err := data.Validate(); err != nil {
		return err
	}
	if data.Features.Rows() > 0 && data.Features.Cols() != len(v.weights)-1 {
		return fmt.Errorf("feature dimension mismatch: got=%d want=%d", data.Features.Cols(), len(v.weights)-1)
	}
	return nil
}
