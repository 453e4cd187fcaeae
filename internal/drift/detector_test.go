package drift

import (
	"math/rand"
	"testing"

	"kybernetes/internal/dataset"
)

func normalMatrix(rng *rand.Rand, rows, cols int, shift []float64) dataset.Matrix {
	out := make(dataset.Matrix, 0, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := range row {
			row[j] = rng.NormFloat64()
			if shift != nil {
				row[j] += shift[j]
			}
		}
		out = append(out, row)
	}
	return out
}

func TestNewDetectorValidation(t *testing.T) {
	if _, err := NewDetector(nil, 0); err == nil {
		t.Fatal("expected error for zero significance")
	}
	if _, err := NewDetector(nil, 1); err == nil {
		t.Fatal("expected error for significance of 1")
	}
	if _, err := NewDetector(nil, DefaultSignificance); err != nil {
		t.Fatalf("new detector: %v", err)
	}
}

func TestEmptyInputsMeanNoDrift(t *testing.T) {
	detector, err := NewDetector(nil, DefaultSignificance)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	reference := normalMatrix(rng, 50, 2, nil)

	result, err := detector.Check(nil, reference)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Drifted {
		t.Fatal("empty sample must report no drift")
	}

	result, err = detector.Check(reference, nil)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Drifted {
		t.Fatal("empty reference must report no drift")
	}
}

func TestDimensionMismatchIsAnError(t *testing.T) {
	detector, err := NewDetector(nil, DefaultSignificance)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	rng := rand.New(rand.NewSource(2))
	sample := normalMatrix(rng, 20, 3, nil)
	reference := normalMatrix(rng, 20, 2, nil)
	if _, err := detector.Check(sample, reference); err == nil {
		t.Fatal("expected feature dimension mismatch error")
	}
}

func TestSameDistributionReportsNoDrift(t *testing.T) {
	detector, err := NewDetector(nil, DefaultSignificance)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	rng := rand.New(rand.NewSource(3))
	sample := normalMatrix(rng, 200, 3, nil)
	reference := normalMatrix(rng, 200, 3, nil)

	result, err := detector.Check(sample, reference)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if result.Drifted {
		t.Fatalf("same distribution flagged as drift on feature %d (p=%v)", result.FeatureIndex, result.PValue)
	}
}

func TestShiftedColumnTriggersDrift(t *testing.T) {
	detector, err := NewDetector(nil, DefaultSignificance)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	rng := rand.New(rand.NewSource(4))
	reference := normalMatrix(rng, 200, 3, nil)
	// Column 1 shifted by five standard deviations.
	sample := normalMatrix(rng, 200, 3, []float64{0, 5, 0})

	result, err := detector.Check(sample, reference)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Drifted {
		t.Fatal("expected drift on the shifted column")
	}
	if result.FeatureIndex != 1 {
		t.Fatalf("expected feature 1 to trigger, got %d", result.FeatureIndex)
	}
	if result.PValue >= DefaultSignificance {
		t.Fatalf("expected rejecting p-value, got %v", result.PValue)
	}
}

func TestCheckIsDeterministic(t *testing.T) {
	detector, err := NewDetector(nil, DefaultSignificance)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	rng := rand.New(rand.NewSource(5))
	reference := normalMatrix(rng, 100, 2, nil)
	sample := normalMatrix(rng, 100, 2, []float64{3, 0})

	first, err := detector.Check(sample, reference)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	second, err := detector.Check(sample, reference)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if first != second {
		t.Fatalf("detector must be deterministic: %+v vs %+v", first, second)
	}
}

func TestShortCircuitsOnFirstRejection(t *testing.T) {
	calls := 0
	test := func(sample, reference []float64) (float64, error) {
		calls++
		return 0.001, nil
	}
	detector, err := NewDetector(test, DefaultSignificance)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	rng := rand.New(rand.NewSource(6))
	sample := normalMatrix(rng, 10, 4, nil)
	reference := normalMatrix(rng, 10, 4, nil)

	result, err := detector.Check(sample, reference)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !result.Drifted || result.FeatureIndex != 0 {
		t.Fatalf("expected drift on feature 0, got %+v", result)
	}
	if calls != 1 {
		t.Fatalf("expected short-circuit after the first rejection, ran %d tests", calls)
	}
}

func TestKolmogorovSmirnovTestBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	a := make([]float64, 100)
	b := make([]float64, 100)
	for i := range a {
		a[i] = rng.NormFloat64()
		b[i] = rng.NormFloat64()
	}
	p, err := KolmogorovSmirnovTest(a, b)
	if err != nil {
		t.Fatalf("ks test: %v", err)
	}
	if p < 0 || p > 1 {
		t.Fatalf("p-value out of bounds: %v", p)
	}
	if _, err := KolmogorovSmirnovTest(nil, b); err == nil {
		t.Fatal("expected error for empty sample")
	}
}
