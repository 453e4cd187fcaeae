package kybernetes

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kybernetes/internal/candidate"
	"kybernetes/internal/control"
	"kybernetes/internal/dataset"
	"kybernetes/internal/degrade"
	"kybernetes/internal/drift"
	"kybernetes/internal/evolve"
	"kybernetes/internal/model"
	"kybernetes/internal/platform"
	"kybernetes/internal/storage"
	"kybernetes/internal/throttle"
)

const defaultDBPath = "kybernetes.db"

// Options configures a Client.
type Options struct {
	StoreKind string
	DBPath    string
	Logger    *zap.Logger
	// Sampler overrides the process resource sampler; nil uses the real
	// gopsutil-backed sampler unless DisableThrottle is set.
	Sampler throttle.Sampler
}

// Client runs controller experiments and reads back persisted artifacts.
type Client struct {
	store   storage.Store
	logger  *zap.Logger
	sampler throttle.Sampler
}

// New opens the configured store and returns a client.
func New(ctx context.Context, opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{store: store, logger: logger, sampler: opts.Sampler}, nil
}

// Close releases the store if it supports closing.
func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// RunRequest configures one controller run. Zero values take defaults.
type RunRequest struct {
	RunID                 string
	Provider              dataset.Provider
	Generations           int
	Seed                  int64
	PopulationSize        int
	SelectionTopK         int
	MutationRate          float64
	DiversityRate         float64
	Selection             string
	DriftCheckFreq        int
	DegradationThreshold  float64
	RetrainingFreq        int
	BatchSize             int
	ResetBaselineOnReinit bool
	DisableThrottle       bool
	SampleWindow          time.Duration
	MaxRestarts           int
}

func (r *RunRequest) applyDefaults() {
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	if r.PopulationSize == 0 {
		r.PopulationSize = 20
	}
	if r.SelectionTopK == 0 {
		r.SelectionTopK = 5
	}
	if r.MutationRate == 0 {
		r.MutationRate = 0.05
	}
	if r.DriftCheckFreq == 0 {
		r.DriftCheckFreq = 5
	}
	if r.DegradationThreshold == 0 {
		r.DegradationThreshold = degrade.DefaultThreshold
	}
	if r.RetrainingFreq == 0 {
		r.RetrainingFreq = 10
	}
	if r.BatchSize == 0 {
		r.BatchSize = 32
	}
}

// RunResult reports a completed run.
type RunResult struct {
	Summary model.RunSummary
	History []model.GenerationRecord
	Resets  []model.ResetEvent
}

// Run executes the full control loop for the requested generation budget
// and persists the run artifacts.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	if req.Provider == nil {
		return RunResult{}, fmt.Errorf("data provider is required")
	}
	if req.Generations <= 0 {
		return RunResult{}, fmt.Errorf("generation budget must be > 0, got %d", req.Generations)
	}
	req.applyDefaults()

	validation, err := req.Provider.Validation(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("probe validation split: %w", err)
	}
	dim := validation.Features.Cols()
	if dim == 0 {
		return RunResult{}, fmt.Errorf("validation split has no features")
	}

	rng := rand.New(rand.NewSource(req.Seed))
	base, err := candidate.NewVector(rng, dim)
	if err != nil {
		return RunResult{}, err
	}

	settings, err := throttle.NewSettings(req.BatchSize)
	if err != nil {
		return RunResult{}, err
	}

	var limiter *throttle.Throttle
	if !req.DisableThrottle {
		sampler := c.sampler
		if sampler == nil {
			sampler, err = throttle.NewProcessSampler(req.SampleWindow)
			if err != nil {
				return RunResult{}, fmt.Errorf("build resource sampler: %w", err)
			}
		}
		limiter, err = throttle.New(sampler, settings, throttle.DefaultLimitPercent)
		if err != nil {
			return RunResult{}, err
		}
	}

	detector, err := drift.NewDetector(nil, drift.DefaultSignificance)
	if err != nil {
		return RunResult{}, err
	}
	monitor, err := degrade.NewMonitor(req.DegradationThreshold)
	if err != nil {
		return RunResult{}, err
	}
	selector, err := evolve.NewSelector(req.Selection, req.DiversityRate)
	if err != nil {
		return RunResult{}, err
	}
	engine, err := evolve.NewEngine(evolve.Config{
		PopulationSize:   req.PopulationSize,
		TopK:             req.SelectionTopK,
		BaseMutationRate: req.MutationRate,
		Selector:         selector,
		Seed:             req.Seed,
	})
	if err != nil {
		return RunResult{}, err
	}

	history := make([]model.GenerationRecord, 0, req.Generations)
	events := control.ZapEvents(c.logger)
	logComplete := events.OnGenerationComplete
	events.OnGenerationComplete = func(record model.GenerationRecord) {
		history = append(history, record)
		if logComplete != nil {
			logComplete(record)
		}
	}

	controller, err := control.New(control.Config{
		PopulationSize:        req.PopulationSize,
		DriftCheckFreq:        req.DriftCheckFreq,
		RetrainingFreq:        req.RetrainingFreq,
		ResetBaselineOnReinit: req.ResetBaselineOnReinit,
		Base:                  base,
		Provider:              req.Provider,
		Detector:              detector,
		Monitor:               monitor,
		Engine:                engine,
		Throttle:              limiter,
		Settings:              settings,
		Events:                events,
	})
	if err != nil {
		return RunResult{}, err
	}

	runner := platform.NewRunnerWithHooks(platform.RunnerPolicy{MaxRestarts: req.MaxRestarts}, platform.RunnerHooks{
		OnRestart: func(generation int, err error, restartCount int) {
			c.logger.Warn("generation_restarted",
				zap.Int("generation", generation),
				zap.Int("restart_count", restartCount),
				zap.Error(err),
			)
		},
	})
	if err := runner.Run(ctx, req.Generations, func(ctx context.Context) error {
		_, err := controller.Step(ctx)
		return err
	}); err != nil {
		return RunResult{}, err
	}

	resets := controller.ResetEvents()
	finalBest := 0.0
	if len(history) > 0 {
		finalBest = history[len(history)-1].BestScore
	}
	summary := model.RunSummary{
		VersionedRecord: storage.Stamp(),
		RunID:           req.RunID,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339),
		Seed:            req.Seed,
		Population:      req.PopulationSize,
		Generations:     req.Generations,
		Selection:       selector.Name(),
		FinalBest:       finalBest,
		ResetCount:      len(resets),
	}

	if err := c.store.SaveRunSummary(ctx, summary); err != nil {
		return RunResult{}, fmt.Errorf("persist run summary: %w", err)
	}
	if err := c.store.SaveGenerationHistory(ctx, req.RunID, history); err != nil {
		return RunResult{}, fmt.Errorf("persist generation history: %w", err)
	}
	if err := c.store.SaveResetEvents(ctx, req.RunID, resets); err != nil {
		return RunResult{}, fmt.Errorf("persist reset events: %w", err)
	}
	state := controller.State()
	if state.Baseline != degrade.BaselineUnset {
		baseline := model.BaselineRecord{
			VersionedRecord: storage.Stamp(),
			RunID:           req.RunID,
			Score:           state.Baseline,
			Generation:      state.Generation,
		}
		if err := c.store.SaveBaseline(ctx, baseline); err != nil {
			return RunResult{}, fmt.Errorf("persist baseline: %w", err)
		}
	}

	return RunResult{Summary: summary, History: history, Resets: resets}, nil
}

// Runs lists persisted run summaries, newest first.
func (c *Client) Runs(ctx context.Context, limit int) ([]model.RunSummary, error) {
	return c.store.ListRunSummaries(ctx, limit)
}

// History returns the per-generation records of a run.
func (c *Client) History(ctx context.Context, runID string) ([]model.GenerationRecord, error) {
	history, ok, err := c.store.GetGenerationHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return history, nil
}

// Resets returns the reset events of a run.
func (c *Client) Resets(ctx context.Context, runID string) ([]model.ResetEvent, error) {
	events, ok, err := c.store.GetResetEvents(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("run not found: %s", runID)
	}
	return events, nil
}
