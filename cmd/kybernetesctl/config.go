package main

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"kybernetes/internal/dataset"
	kapi "kybernetes/pkg/kybernetes"
)

type syntheticData struct {
	Rows     int
	Features int
	Noise    float64
	Seed     int64
}

type runConfig struct {
	Request kapi.RunRequest
	Data    syntheticData
}

func loadRunConfig(path string) (runConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runConfig{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return runConfig{}, err
	}

	var cfg runConfig
	if v, ok := asString(raw["run_id"]); ok {
		cfg.Request.RunID = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		cfg.Request.Generations = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		cfg.Request.Seed = v
	}
	if v, ok := asInt(raw["population_size"]); ok {
		cfg.Request.PopulationSize = v
	}
	if v, ok := asInt(raw["selection_top_k"]); ok {
		cfg.Request.SelectionTopK = v
	}
	if v, ok := asFloat64(raw["mutation_rate"]); ok {
		cfg.Request.MutationRate = v
	}
	if v, ok := asFloat64(raw["diversity_rate"]); ok {
		cfg.Request.DiversityRate = v
	}
	if v, ok := asString(raw["selection"]); ok {
		cfg.Request.Selection = v
	}
	if v, ok := asInt(raw["drift_check_freq"]); ok {
		cfg.Request.DriftCheckFreq = v
	}
	if v, ok := asFloat64(raw["degradation_threshold"]); ok {
		cfg.Request.DegradationThreshold = v
	}
	if v, ok := asInt(raw["retraining_freq"]); ok {
		cfg.Request.RetrainingFreq = v
	}
	if v, ok := asInt(raw["batch_size"]); ok {
		cfg.Request.BatchSize = v
	}
	if v, ok := asBool(raw["reset_baseline_on_reinit"]); ok {
		cfg.Request.ResetBaselineOnReinit = v
	}
	if v, ok := asBool(raw["disable_throttle"]); ok {
		cfg.Request.DisableThrottle = v
	}
	if v, ok := asInt(raw["sample_window_ms"]); ok {
		cfg.Request.SampleWindow = time.Duration(v) * time.Millisecond
	}
	if v, ok := asInt(raw["max_restarts"]); ok {
		cfg.Request.MaxRestarts = v
	}

	if dataMap, ok := raw["data"].(map[string]any); ok {
		if v, ok := asInt(dataMap["rows"]); ok {
			cfg.Data.Rows = v
		}
		if v, ok := asInt(dataMap["features"]); ok {
			cfg.Data.Features = v
		}
		if v, ok := asFloat64(dataMap["noise"]); ok {
			cfg.Data.Noise = v
		}
		if v, ok := asInt64(dataMap["seed"]); ok {
			cfg.Data.Seed = v
		}
	}
	return cfg, nil
}

// buildProvider generates a synthetic linear regression task and returns a
// static provider over an 80/20 train/validation split. CSV and URL
// ingestion belong to external collaborators, not this tool.
func buildProvider(data syntheticData) (*dataset.StaticProvider, error) {
	rows := data.Rows
	if rows <= 0 {
		rows = 500
	}
	features := data.Features
	if features <= 0 {
		features = 4
	}
	noise := data.Noise
	if noise < 0 {
		return nil, fmt.Errorf("noise must be >= 0, got %v", noise)
	}

	rng := rand.New(rand.NewSource(data.Seed))
	weights := make([]float64, features)
	for i := range weights {
		weights[i] = rng.NormFloat64()
	}

	full := dataset.Dataset{
		Features: make(dataset.Matrix, 0, rows),
		Labels:   make([]float64, 0, rows),
	}
	for i := 0; i < rows; i++ {
		row := make([]float64, features)
		label := 0.0
		for j := range row {
			row[j] = rng.NormFloat64()
			label += weights[j] * row[j]
		}
		label += rng.NormFloat64() * noise
		full.Features = append(full.Features, row)
		full.Labels = append(full.Labels, label)
	}

	split := int(math.Round(float64(rows) * 0.8))
	if split <= 0 || split >= rows {
		return nil, fmt.Errorf("too few rows for a train/validation split: %d", rows)
	}
	training := dataset.Dataset{Features: full.Features[:split], Labels: full.Labels[:split]}
	validation := dataset.Dataset{Features: full.Features[split:], Labels: full.Labels[split:]}
	return dataset.NewStaticProvider(training, validation)
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	b, ok := v.(bool)
	return b, ok
}

func asFloat64(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func asInt64(v any) (int64, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
