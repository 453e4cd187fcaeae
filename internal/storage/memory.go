package storage

import (
	"context"
	"sort"
	"sync"

	"kybernetes/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunSummary
	history     map[string][]model.GenerationRecord
	resets      map[string][]model.ResetEvent
	baselines   map[string]model.BaselineRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunSummary)
	s.history = make(map[string][]model.GenerationRecord)
	s.resets = make(map[string][]model.ResetEvent)
	s.baselines = make(map[string]model.BaselineRecord)
	return nil
}

func (s *MemoryStore) SaveRunSummary(_ context.Context, summary model.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[summary.RunID] = summary
	return nil
}

func (s *MemoryStore) GetRunSummary(_ context.Context, runID string) (model.RunSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary, ok := s.runs[runID]
	return summary, ok, nil
}

func (s *MemoryStore) ListRunSummaries(_ context.Context, limit int) ([]model.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.RunSummary, 0, len(s.runs))
	for _, summary := range s.runs {
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAtUTC == out[j].CreatedAtUTC {
			return out[i].RunID < out[j].RunID
		}
		return out[i].CreatedAtUTC > out[j].CreatedAtUTC
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SaveGenerationHistory(_ context.Context, runID string, history []model.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[runID] = append([]model.GenerationRecord(nil), history...)
	return nil
}

func (s *MemoryStore) GetGenerationHistory(_ context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.history[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.GenerationRecord(nil), history...), true, nil
}

func (s *MemoryStore) SaveResetEvents(_ context.Context, runID string, events []model.ResetEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resets[runID] = append([]model.ResetEvent(nil), events...)
	return nil
}

func (s *MemoryStore) GetResetEvents(_ context.Context, runID string) ([]model.ResetEvent, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, ok := s.resets[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.ResetEvent(nil), events...), true, nil
}

func (s *MemoryStore) SaveBaseline(_ context.Context, baseline model.BaselineRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.baselines[baseline.RunID] = baseline
	return nil
}

func (s *MemoryStore) GetBaseline(_ context.Context, runID string) (model.BaselineRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	baseline, ok := s.baselines[runID]
	return baseline, ok, nil
}
