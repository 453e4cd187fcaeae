package dataset

import (
	"context"
	"testing"
)

func TestMatrixShape(t *testing.T) {
	m := Matrix{{1, 2}, {3, 4}, {5, 6}}
	if m.Rows() != 3 || m.Cols() != 2 {
		t.Fatalf("unexpected shape: rows=%d cols=%d", m.Rows(), m.Cols())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	col, err := m.Column(1)
	if err != nil {
		t.Fatalf("column: %v", err)
	}
	if len(col) != 3 || col[0] != 2 || col[2] != 6 {
		t.Fatalf("unexpected column: %v", col)
	}
	if _, err := m.Column(2); err == nil {
		t.Fatal("expected out-of-range error")
	}

	ragged := Matrix{{1, 2}, {3}}
	if err := ragged.Validate(); err == nil {
		t.Fatal("expected ragged matrix error")
	}
}

func TestDatasetValidate(t *testing.T) {
	good := Dataset{Features: Matrix{{1}, {2}}, Labels: []float64{1, 2}}
	if err := good.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	bad := Dataset{Features: Matrix{{1}, {2}}, Labels: []float64{1}}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected label mismatch error")
	}
	if !(Dataset{}).Empty() {
		t.Fatal("zero dataset must be empty")
	}
}

func TestStaticProviderCyclesBatches(t *testing.T) {
	training := Dataset{
		Features: Matrix{{1}, {2}, {3}},
		Labels:   []float64{1, 2, 3},
	}
	validation := Dataset{
		Features: Matrix{{9}},
		Labels:   []float64{9},
	}
	provider, err := NewStaticProvider(training, validation)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}

	first, err := provider.TrainingBatch(context.Background(), 2)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if first.Features.Rows() != 2 || first.Features[0][0] != 1 || first.Features[1][0] != 2 {
		t.Fatalf("unexpected first batch: %v", first.Features)
	}

	second, err := provider.TrainingBatch(context.Background(), 2)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if second.Features[0][0] != 3 || second.Features[1][0] != 1 {
		t.Fatalf("expected wrap-around batch, got %v", second.Features)
	}

	if _, err := provider.TrainingBatch(context.Background(), 0); err == nil {
		t.Fatal("expected error for non-positive batch size")
	}

	val, err := provider.Validation(context.Background())
	if err != nil {
		t.Fatalf("validation: %v", err)
	}
	if val.Features.Rows() != 1 || val.Features[0][0] != 9 {
		t.Fatalf("unexpected validation split: %v", val.Features)
	}
}

func TestStaticProviderOversizedBatchClamps(t *testing.T) {
	training := Dataset{Features: Matrix{{1}, {2}}, Labels: []float64{1, 2}}
	provider, err := NewStaticProvider(training, Dataset{})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	batch, err := provider.TrainingBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if batch.Features.Rows() != 2 {
		t.Fatalf("expected clamped batch of 2, got %d", batch.Features.Rows())
	}
}

func TestStaticProviderReplace(t *testing.T) {
	training := Dataset{Features: Matrix{{1}}, Labels: []float64{1}}
	provider, err := NewStaticProvider(training, Dataset{})
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	shifted := Dataset{Features: Matrix{{100}}, Labels: []float64{100}}
	if err := provider.Replace(shifted); err != nil {
		t.Fatalf("replace: %v", err)
	}
	batch, err := provider.TrainingBatch(context.Background(), 1)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if batch.Features[0][0] != 100 {
		t.Fatalf("expected replaced data, got %v", batch.Features)
	}
}
