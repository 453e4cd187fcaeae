package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunConfigParsesAllFields(t *testing.T) {
	path := writeConfig(t, `{
		"run_id": "nightly",
		"generations": 40,
		"seed": 99,
		"population_size": 24,
		"selection_top_k": 6,
		"mutation_rate": 0.08,
		"diversity_rate": 0.9,
		"selection": "diversity",
		"drift_check_freq": 4,
		"degradation_threshold": 0.1,
		"retraining_freq": 12,
		"batch_size": 64,
		"reset_baseline_on_reinit": true,
		"disable_throttle": true,
		"sample_window_ms": 250,
		"max_restarts": 3,
		"data": {"rows": 200, "features": 3, "noise": 0.05, "seed": 5}
	}`)

	cfg, err := loadRunConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	req := cfg.Request
	if req.RunID != "nightly" || req.Generations != 40 || req.Seed != 99 {
		t.Fatalf("identity fields mismatch: %+v", req)
	}
	if req.PopulationSize != 24 || req.SelectionTopK != 6 {
		t.Fatalf("population fields mismatch: %+v", req)
	}
	if req.MutationRate != 0.08 || req.DiversityRate != 0.9 || req.Selection != "diversity" {
		t.Fatalf("selection fields mismatch: %+v", req)
	}
	if req.DriftCheckFreq != 4 || req.DegradationThreshold != 0.1 || req.RetrainingFreq != 12 {
		t.Fatalf("monitoring fields mismatch: %+v", req)
	}
	if req.BatchSize != 64 || !req.ResetBaselineOnReinit || !req.DisableThrottle {
		t.Fatalf("throttle fields mismatch: %+v", req)
	}
	if req.SampleWindow != 250*time.Millisecond || req.MaxRestarts != 3 {
		t.Fatalf("runtime fields mismatch: %+v", req)
	}
	if cfg.Data.Rows != 200 || cfg.Data.Features != 3 || cfg.Data.Noise != 0.05 || cfg.Data.Seed != 5 {
		t.Fatalf("data fields mismatch: %+v", cfg.Data)
	}
}

func TestLoadRunConfigIgnoresMistypedFields(t *testing.T) {
	path := writeConfig(t, `{
		"generations": "forty",
		"population_size": 10.5,
		"seed": 3
	}`)

	cfg, err := loadRunConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Request.Generations != 0 {
		t.Fatalf("string generations must be ignored, got %d", cfg.Request.Generations)
	}
	if cfg.Request.PopulationSize != 0 {
		t.Fatalf("fractional population must be ignored, got %d", cfg.Request.PopulationSize)
	}
	if cfg.Request.Seed != 3 {
		t.Fatalf("seed not parsed: %d", cfg.Request.Seed)
	}
}

func TestLoadRunConfigRejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"generations": `)
	if _, err := loadRunConfig(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
	if _, err := loadRunConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBuildProviderSplitsEightyTwenty(t *testing.T) {
	provider, err := buildProvider(syntheticData{Rows: 100, Features: 3, Seed: 1})
	if err != nil {
		t.Fatalf("build provider: %v", err)
	}

	ctx := context.Background()
	validation, err := provider.Validation(ctx)
	if err != nil {
		t.Fatalf("validation: %v", err)
	}
	if got := validation.Features.Rows(); got != 20 {
		t.Fatalf("validation rows %d, want 20", got)
	}
	if got := validation.Features.Cols(); got != 3 {
		t.Fatalf("validation cols %d, want 3", got)
	}

	batch, err := provider.TrainingBatch(ctx, 80)
	if err != nil {
		t.Fatalf("training batch: %v", err)
	}
	if got := batch.Features.Rows(); got != 80 {
		t.Fatalf("training rows %d, want 80", got)
	}
}

func TestBuildProviderDefaultsAndValidation(t *testing.T) {
	provider, err := buildProvider(syntheticData{})
	if err != nil {
		t.Fatalf("defaults must produce a provider: %v", err)
	}
	validation, err := provider.Validation(context.Background())
	if err != nil {
		t.Fatalf("validation: %v", err)
	}
	if got := validation.Features.Cols(); got != 4 {
		t.Fatalf("default feature count %d, want 4", got)
	}

	if _, err := buildProvider(syntheticData{Rows: 1}); err == nil {
		t.Fatal("expected error for too few rows")
	}
	if _, err := buildProvider(syntheticData{Noise: -1}); err == nil {
		t.Fatal("expected error for negative noise")
	}
}
