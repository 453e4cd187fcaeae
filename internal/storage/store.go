package storage

import (
	"context"

	"kybernetes/internal/model"
)

// Store defines persistence operations for controller run artifacts.
type Store interface {
	Init(ctx context.Context) error
	SaveRunSummary(ctx context.Context, summary model.RunSummary) error
	GetRunSummary(ctx context.Context, runID string) (model.RunSummary, bool, error)
	ListRunSummaries(ctx context.Context, limit int) ([]model.RunSummary, error)
	SaveGenerationHistory(ctx context.Context, runID string, history []model.GenerationRecord) error
	GetGenerationHistory(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
	SaveResetEvents(ctx context.Context, runID string, events []model.ResetEvent) error
	GetResetEvents(ctx context.Context, runID string) ([]model.ResetEvent, bool, error)
	SaveBaseline(ctx context.Context, baseline model.BaselineRecord) error
	GetBaseline(ctx context.Context, runID string) (model.BaselineRecord, bool, error)
}
