package control

import (
	"context"
	"errors"
	"fmt"

	"kybernetes/internal/candidate"
	"kybernetes/internal/dataset"
	"kybernetes/internal/degrade"
	"kybernetes/internal/drift"
	"kybernetes/internal/evolve"
	"kybernetes/internal/model"
	"kybernetes/internal/throttle"
)

// Config wires one controller. The generation budget is external: callers
// invoke Step once per generation until their budget is spent.
type Config struct {
	PopulationSize int
	// DriftCheckFreq is the generation interval between drift checks.
	DriftCheckFreq int
	// RetrainingFreq is the generation interval between forced resets.
	RetrainingFreq int
	// ResetBaselineOnReinit also clears the degradation baseline whenever
	// the population is reinitialized. Off by default: a reset replaces
	// population composition only.
	ResetBaselineOnReinit bool

	Base     candidate.Candidate
	Provider dataset.Provider
	Detector *drift.Detector
	Monitor  *degrade.Monitor
	Engine   *evolve.Engine
	Throttle *throttle.Throttle
	Settings *throttle.Settings
	Events   Events
}

// State is the controller-owned generation state. Nothing else mutates it.
type State struct {
	Generation int
	LastReset  int
	Baseline   float64
}

// Controller orchestrates one generation at a time: drift check, evaluation,
// degradation check, evolution, scheduled reset, and throttle adjustment.
// The loop is single-threaded and cooperative; candidates are evaluated one
// at a time so one failure never affects another.
type Controller struct {
	cfg        Config
	state      State
	population []candidate.Candidate
	resets     []model.ResetEvent
}

// New validates the wiring and seeds the population with clones of the base
// candidate. Structural errors are fatal here, not recoverable mid-loop.
func New(cfg Config) (*Controller, error) {
	if cfg.PopulationSize <= 1 {
		return nil, fmt.Errorf("population size must be > 1, got %d", cfg.PopulationSize)
	}
	if cfg.DriftCheckFreq <= 0 {
		return nil, fmt.Errorf("drift check frequency must be > 0, got %d", cfg.DriftCheckFreq)
	}
	if cfg.RetrainingFreq <= 0 {
		return nil, fmt.Errorf("retraining frequency must be > 0, got %d", cfg.RetrainingFreq)
	}
	if cfg.Base == nil {
		return nil, fmt.Errorf("base candidate is required")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("data provider is required")
	}
	if cfg.Detector == nil {
		return nil, fmt.Errorf("drift detector is required")
	}
	if cfg.Monitor == nil {
		return nil, fmt.Errorf("degradation monitor is required")
	}
	if cfg.Engine == nil {
		return nil, fmt.Errorf("evolution engine is required")
	}
	if cfg.Settings == nil {
		return nil, fmt.Errorf("shared settings are required")
	}

	population := make([]candidate.Candidate, 0, cfg.PopulationSize)
	for i := 0; i < cfg.PopulationSize; i++ {
		population = append(population, cfg.Base.Clone())
	}
	return &Controller{
		cfg:        cfg,
		state:      State{Baseline: degrade.BaselineUnset},
		population: population,
	}, nil
}

// State returns a copy of the generation state.
func (c *Controller) State() State { return c.state }

// Population returns the current population. Callers must not mutate it.
func (c *Controller) Population() []candidate.Candidate { return c.population }

// ResetEvents returns every reinitialization recorded so far.
func (c *Controller) ResetEvents() []model.ResetEvent {
	out := make([]model.ResetEvent, len(c.resets))
	copy(out, c.resets)
	return out
}

// Step runs one full generation and returns its record. The population size
// is restored to the configured constant before Step returns.
func (c *Controller) Step(ctx context.Context) (model.GenerationRecord, error) {
	if err := ctx.Err(); err != nil {
		return model.GenerationRecord{}, err
	}

	c.state.Generation++
	gen := c.state.Generation

	batch, err := c.cfg.Provider.TrainingBatch(ctx, c.cfg.Settings.BatchSize())
	if err != nil {
		return model.GenerationRecord{}, fmt.Errorf("pull training batch: %w", err)
	}
	validation, err := c.cfg.Provider.Validation(ctx)
	if err != nil {
		return model.GenerationRecord{}, fmt.Errorf("pull validation split: %w", err)
	}

	if gen%c.cfg.DriftCheckFreq == 0 {
		result, err := c.cfg.Detector.Check(batch.Features, validation.Features)
		if err != nil {
			return model.GenerationRecord{}, fmt.Errorf("drift check: %w", err)
		}
		if result.Drifted {
			c.cfg.Events.driftDetected(gen, result.FeatureIndex, result.PValue)
			c.reinitialize(model.ResetEvent{
				Generation:   gen,
				Reason:       model.ResetReasonDrift,
				FeatureIndex: result.FeatureIndex,
			})
		}
	}

	scored := c.evaluate(ctx, batch, validation)

	if c.state.Baseline == degrade.BaselineUnset {
		c.state.Baseline = bestOf(scored).Score
	}

	best := bestOf(scored)
	degradation, err := c.cfg.Monitor.Check(c.state.Baseline, best.Score)
	switch {
	case errors.Is(err, degrade.ErrNoBaseline):
		c.cfg.Events.baselineSkipped(gen)
	case err != nil:
		return model.GenerationRecord{}, fmt.Errorf("degradation check: %w", err)
	case degradation.Degraded:
		c.cfg.Events.degradationDetected(gen, degradation.DropFraction)
		c.reinitialize(model.ResetEvent{
			Generation:   gen,
			Reason:       model.ResetReasonDegradation,
			DropFraction: degradation.DropFraction,
		})
		scored = c.evaluate(ctx, batch, validation)
	}

	outcome, err := c.cfg.Engine.Evolve(ctx, scored)
	if err != nil {
		return model.GenerationRecord{}, fmt.Errorf("evolve generation %d: %w", gen, err)
	}
	c.population = outcome.Next

	// Scheduled reset takes precedence over the evolved population.
	if gen%c.cfg.RetrainingFreq == 0 {
		c.reinitialize(model.ResetEvent{
			Generation: gen,
			Reason:     model.ResetReasonScheduled,
		})
	}

	c.adjustThrottle(ctx, gen)

	record := model.GenerationRecord{
		Generation:   gen,
		BestScore:    outcome.Best.Score,
		MeanScore:    outcome.MeanScore,
		WorstScore:   outcome.WorstScore,
		MutationRate: outcome.MutationRate,
		BatchSize:    c.cfg.Settings.BatchSize(),
	}
	c.cfg.Events.generationComplete(record)
	return record, nil
}

// evaluate trains and scores every candidate in sequence. A candidate whose
// training or evaluation fails is scored worst-possible and the generation
// proceeds.
func (c *Controller) evaluate(ctx context.Context, batch, validation dataset.Dataset) []evolve.Scored {
	scored := make([]evolve.Scored, 0, len(c.population))
	for i, member := range c.population {
		score := candidate.WorstScore
		if err := member.Train(ctx, batch); err == nil {
			if s, err := member.Evaluate(ctx, validation); err == nil {
				score = s
			}
		}
		scored = append(scored, evolve.Scored{Index: i, Candidate: member, Score: score})
	}
	return scored
}

func (c *Controller) reinitialize(event model.ResetEvent) {
	population := make([]candidate.Candidate, 0, c.cfg.PopulationSize)
	for i := 0; i < c.cfg.PopulationSize; i++ {
		population = append(population, c.cfg.Base.Clone())
	}
	c.population = population
	c.state.LastReset = event.Generation
	if c.cfg.ResetBaselineOnReinit {
		c.state.Baseline = degrade.BaselineUnset
	}
	c.resets = append(c.resets, event)
	c.cfg.Events.populationReset(event.Generation, event.Reason)
}

// adjustThrottle takes the generation's blocking resource sample. Sampling
// failure skips the adjustment and never fails the generation.
func (c *Controller) adjustThrottle(ctx context.Context, gen int) {
	if c.cfg.Throttle == nil {
		return
	}
	engagedBefore := c.cfg.Throttle.Engaged()
	sample, err := c.cfg.Throttle.Adjust(ctx)
	if err != nil {
		c.cfg.Events.throttleSkipped(gen, err)
		return
	}
	if sample.Throttled && !engagedBefore {
		c.cfg.Events.resourceThrottled(gen, sample, c.cfg.Settings.BatchSize())
	}
}

func bestOf(scored []evolve.Scored) evolve.Scored {
	best := scored[0]
	for _, item := range scored[1:] {
		if item.Score < best.Score {
			best = item
		}
	}
	return best
}
