package candidate

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"kybernetes/internal/dataset"
)

var (
	// ErrIncompatible reports a cross-implementation pairing the operation
	// cannot serve (crossover or distance across unlike candidates).
	ErrIncompatible = errors.New("incompatible candidate implementations")

	// ErrNoData reports an evaluation against an empty dataset.
	ErrNoData = errors.New("no data to evaluate")
)

// WorstScore is substituted for a candidate whose evaluation failed.
// Scores are lower-is-better, so the failed candidate ranks last.
const WorstScore = math.MaxFloat64

// Candidate is one trainable unit in a population. Implementations own
// their weight buffers; no operation may alias state between candidates.
type Candidate interface {
	// ID returns a stable identity for this candidate.
	ID() string

	// Clone produces an independent copy with identical weights.
	Clone() Candidate

	// Mutate perturbs each parameter with probability rate by adding
	// zero-mean noise of small fixed magnitude, in place.
	Mutate(rng *rand.Rand, rate float64)

	// Crossover produces a new candidate whose parameters are selected
	// element-wise from the receiver with probability bias, otherwise
	// from other.
	Crossover(rng *rand.Rand, other Candidate, bias float64) (Candidate, error)

	// Train fits the candidate to data. Batch semantics follow the shared
	// settings read by the caller at call time.
	Train(ctx context.Context, data dataset.Dataset) error

	// Evaluate scores the candidate on data, lower is better. It must not
	// modify weights.
	Evaluate(ctx context.Context, data dataset.Dataset) (float64, error)

	// Distance is a symmetric, non-negative measure of parameter
	// divergence from other.
	Distance(other Candidate) (float64, error)
}
