package dataset

import (
	"context"
	"fmt"
	"sync"
)

// StaticProvider serves batches from in-memory data, cycling through the
// training rows. It stands in for external ingestion in tests and local runs.
type StaticProvider struct {
	mu         sync.Mutex
	training   Dataset
	validation Dataset
	cursor     int
}

// NewStaticProvider validates both splits and returns a provider over them.
func NewStaticProvider(training, validation Dataset) (*StaticProvider, error) {
	if err := training.Validate(); err != nil {
		return nil, fmt.Errorf("training split: %w", err)
	}
	if err := validation.Validate(); err != nil {
		return nil, fmt.Errorf("validation split: %w", err)
	}
	return &StaticProvider{training: training, validation: validation}, nil
}

func (p *StaticProvider) TrainingBatch(ctx context.Context, batchSize int) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return Dataset{}, err
	}
	if batchSize <= 0 {
		return Dataset{}, fmt.Errorf("batch size must be > 0, got %d", batchSize)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	total := p.training.Features.Rows()
	if total == 0 {
		return Dataset{}, nil
	}
	if batchSize > total {
		batchSize = total
	}

	batch := Dataset{
		Features: make(Matrix, 0, batchSize),
		Labels:   make([]float64, 0, batchSize),
	}
	for i := 0; i < batchSize; i++ {
		idx := (p.cursor + i) % total
		batch.Features = append(batch.Features, p.training.Features[idx])
		batch.Labels = append(batch.Labels, p.training.Labels[idx])
	}
	p.cursor = (p.cursor + batchSize) % total
	return batch, nil
}

func (p *StaticProvider) Validation(ctx context.Context) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return Dataset{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.validation, nil
}

// Replace swaps the training split, preserving the validation split. Used to
// simulate a shifted incoming distribution.
func (p *StaticProvider) Replace(training Dataset) error {
	if err := training.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.training = training
	p.cursor = 0
	return nil
}
