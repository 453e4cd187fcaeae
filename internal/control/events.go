package control

import (
	"go.uber.org/zap"

	"kybernetes/internal/model"
)

// Events carries observation callbacks out of the control loop. Any field
// may be nil. Callbacks run synchronously on the loop goroutine and must
// not block.
type Events struct {
	OnDriftDetected       func(generation, featureIndex int, pValue float64)
	OnDegradationDetected func(generation int, dropFraction float64)
	OnPopulationReset     func(generation int, reason model.ResetReason)
	OnResourceThrottled   func(generation int, sample model.ResourceSample, newBatchSize int)
	OnThrottleSkipped     func(generation int, err error)
	OnBaselineSkipped     func(generation int)
	OnGenerationComplete  func(record model.GenerationRecord)
}

// ZapEvents logs every event through a structured logger. A nil logger
// yields no-op events.
func ZapEvents(logger *zap.Logger) Events {
	if logger == nil {
		return Events{}
	}
	return Events{
		OnDriftDetected: func(generation, featureIndex int, pValue float64) {
			logger.Info("drift_detected",
				zap.Int("generation", generation),
				zap.Int("feature_index", featureIndex),
				zap.Float64("p_value", pValue),
			)
		},
		OnDegradationDetected: func(generation int, dropFraction float64) {
			logger.Warn("degradation_detected",
				zap.Int("generation", generation),
				zap.Float64("drop_fraction", dropFraction),
			)
		},
		OnPopulationReset: func(generation int, reason model.ResetReason) {
			logger.Info("population_reset",
				zap.Int("generation", generation),
				zap.String("reason", string(reason)),
			)
		},
		OnResourceThrottled: func(generation int, sample model.ResourceSample, newBatchSize int) {
			logger.Warn("resource_throttled",
				zap.Int("generation", generation),
				zap.Float64("cpu_pct", sample.CPUPercent),
				zap.Float64("mem_pct", sample.MemoryPercent),
				zap.Int("new_batch_size", newBatchSize),
			)
		},
		OnThrottleSkipped: func(generation int, err error) {
			logger.Warn("throttle_skipped",
				zap.Int("generation", generation),
				zap.Error(err),
			)
		},
		OnBaselineSkipped: func(generation int) {
			logger.Debug("degradation_check_skipped",
				zap.Int("generation", generation),
				zap.String("cause", "baseline_unset"),
			)
		},
		OnGenerationComplete: func(record model.GenerationRecord) {
			logger.Info("generation_complete",
				zap.Int("generation", record.Generation),
				zap.Float64("best_score", record.BestScore),
				zap.Float64("mean_score", record.MeanScore),
				zap.Float64("mutation_rate", record.MutationRate),
				zap.Int("batch_size", record.BatchSize),
			)
		},
	}
}

func (e Events) driftDetected(generation, featureIndex int, pValue float64) {
	if e.OnDriftDetected != nil {
		e.OnDriftDetected(generation, featureIndex, pValue)
	}
}

func (e Events) degradationDetected(generation int, dropFraction float64) {
	if e.OnDegradationDetected != nil {
		e.OnDegradationDetected(generation, dropFraction)
	}
}

func (e Events) populationReset(generation int, reason model.ResetReason) {
	if e.OnPopulationReset != nil {
		e.OnPopulationReset(generation, reason)
	}
}

func (e Events) resourceThrottled(generation int, sample model.ResourceSample, newBatchSize int) {
	if e.OnResourceThrottled != nil {
		e.OnResourceThrottled(generation, sample, newBatchSize)
	}
}

func (e Events) throttleSkipped(generation int, err error) {
	if e.OnThrottleSkipped != nil {
		e.OnThrottleSkipped(generation, err)
	}
}

func (e Events) baselineSkipped(generation int) {
	if e.OnBaselineSkipped != nil {
		e.OnBaselineSkipped(generation)
	}
}

func (e Events) generationComplete(record model.GenerationRecord) {
	if e.OnGenerationComplete != nil {
		e.OnGenerationComplete(record)
	}
}
