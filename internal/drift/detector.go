package drift

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"kybernetes/internal/dataset"
)

// DefaultSignificance is the rejection threshold for the per-column test.
const DefaultSignificance = 0.05

// TestFunc runs a two-sample distribution-equality test over one feature
// column and returns the significance value (p-value) of the null
// hypothesis that both samples share a distribution.
type TestFunc func(sample, reference []float64) (float64, error)

// Result reports a drift decision. FeatureIndex and PValue describe the
// first rejecting column when Drifted is true.
type Result struct {
	Drifted      bool
	FeatureIndex int
	PValue       float64
}

// Detector compares a new data sample against a reference sample, one
// feature column at a time, short-circuiting on the first rejection.
type Detector struct {
	test         TestFunc
	significance float64
}

// NewDetector builds a detector with the given test primitive. A nil test
// uses the two-sample Kolmogorov-Smirnov test.
func NewDetector(test TestFunc, significance float64) (*Detector, error) {
	if test == nil {
		test = KolmogorovSmirnovTest
	}
	if significance <= 0 || significance >= 1 {
		return nil, fmt.Errorf("significance must be in (0,1), got %v", significance)
	}
	return &Detector{test: test, significance: significance}, nil
}

// Check compares sample against reference per feature column. Empty inputs
// are insufficient evidence, not an error: the result reports no drift.
func (d *Detector) Check(sample, reference dataset.Matrix) (Result, error) {
	if sample.Rows() == 0 || reference.Rows() == 0 {
		return Result{FeatureIndex: -1, PValue: 1}, nil
	}
	if err := sample.Validate(); err != nil {
		return Result{}, fmt.Errorf("sample: %w", err)
	}
	if err := reference.Validate(); err != nil {
		return Result{}, fmt.Errorf("reference: %w", err)
	}
	if sample.Cols() != reference.Cols() {
		return Result{}, fmt.Errorf("feature dimension mismatch: sample=%d reference=%d", sample.Cols(), reference.Cols())
	}

	for j := 0; j < sample.Cols(); j++ {
		sampleCol, err := sample.Column(j)
		if err != nil {
			return Result{}, err
		}
		referenceCol, err := reference.Column(j)
		if err != nil {
			return Result{}, err
		}
		p, err := d.test(sampleCol, referenceCol)
		if err != nil {
			return Result{}, fmt.Errorf("test column %d: %w", j, err)
		}
		if p < d.significance {
			return Result{Drifted: true, FeatureIndex: j, PValue: p}, nil
		}
	}
	return Result{FeatureIndex: -1, PValue: 1}, nil
}

// KolmogorovSmirnovTest is the default two-sample test: the gonum KS
// statistic converted to a significance value through the asymptotic
// Kolmogorov distribution.
func KolmogorovSmirnovTest(sample, reference []float64) (float64, error) {
	if len(sample) == 0 || len(reference) == 0 {
		return 0, fmt.Errorf("empty sample")
	}

	x := append([]float64(nil), sample...)
	y := append([]float64(nil), reference...)
	sort.Float64s(x)
	sort.Float64s(y)

	statistic := stat.KolmogorovSmirnov(x, nil, y, nil)
	n1 := float64(len(x))
	n2 := float64(len(y))
	ne := n1 * n2 / (n1 + n2)
	lambda := (math.Sqrt(ne) + 0.12 + 0.11/math.Sqrt(ne)) * statistic
	return ksSurvival(lambda), nil
}

// ksSurvival evaluates Q_KS(lambda) = 2 * sum_{j>=1} (-1)^(j-1) exp(-2 j^2 lambda^2),
// the asymptotic tail probability of the Kolmogorov distribution.
func ksSurvival(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}
	sum := 0.0
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2*float64(j*j)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}
	p := 2 * sum
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
