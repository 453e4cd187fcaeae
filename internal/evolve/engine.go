package evolve

import (
	"context"
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"kybernetes/internal/candidate"
)

// betterParentBias is the element-wise probability of inheriting from the
// better-scoring parent during crossover refill.
const betterParentBias = 0.7

// Config parameterizes one evolution engine.
type Config struct {
	PopulationSize int
	TopK           int
	// BaseMutationRate is the per-parameter mutation probability before
	// adaptive scaling by the generation's score spread.
	BaseMutationRate float64
	Selector         Selector
	Seed             int64
}

// Outcome reports one population transformation.
type Outcome struct {
	Next         []candidate.Candidate
	Best         Scored
	MutationRate float64
	MeanScore    float64
	WorstScore   float64
}

// Engine produces the next population: selection, crossover refill, and
// adaptive mutation.
type Engine struct {
	cfg Config
	rng *rand.Rand
}

// NewEngine validates the configuration. Structural errors are fatal here,
// never mid-generation.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.PopulationSize <= 1 {
		return nil, fmt.Errorf("population size must be > 1, got %d", cfg.PopulationSize)
	}
	if cfg.TopK <= 1 || cfg.TopK > cfg.PopulationSize {
		return nil, fmt.Errorf("top k must be in [2, population size], got %d", cfg.TopK)
	}
	if cfg.BaseMutationRate <= 0 || cfg.BaseMutationRate > 1 {
		return nil, fmt.Errorf("base mutation rate must be in (0,1], got %v", cfg.BaseMutationRate)
	}
	if cfg.Selector == nil {
		cfg.Selector = DiversitySelector{}
	}
	return &Engine{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}, nil
}

// Evolve transforms one scored generation into the next. The population
// grows transiently during refill; the returned population always has
// exactly PopulationSize members.
func (e *Engine) Evolve(ctx context.Context, scored []Scored) (Outcome, error) {
	if len(scored) != e.cfg.PopulationSize {
		return Outcome{}, fmt.Errorf("population mismatch: got=%d want=%d", len(scored), e.cfg.PopulationSize)
	}
	for i, item := range scored {
		if item.Candidate == nil {
			return Outcome{}, fmt.Errorf("nil candidate at index %d", i)
		}
	}

	best, mean, worst := summarize(scored)
	rate := e.AdaptiveRate(scored)

	selected, err := e.cfg.Selector.Select(scored, e.cfg.TopK)
	if err != nil {
		return Outcome{}, fmt.Errorf("selection: %w", err)
	}

	next := make([]candidate.Candidate, 0, e.cfg.PopulationSize)
	for _, item := range selected {
		next = append(next, item.Candidate.Clone())
	}
	for len(next) < e.cfg.PopulationSize {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		child, err := e.breed(selected, rate)
		if err != nil {
			return Outcome{}, err
		}
		next = append(next, child)
	}

	return Outcome{
		Next:         next,
		Best:         best,
		MutationRate: rate,
		MeanScore:    mean,
		WorstScore:   worst,
	}, nil
}

// breed samples two distinct parents uniformly from the selected set,
// crosses them with a bias toward the better generation score, and applies
// adaptive mutation to the child. Parent comparison reuses the scores
// already computed this generation; nothing is re-evaluated.
func (e *Engine) breed(selected []Scored, rate float64) (candidate.Candidate, error) {
	first := e.rng.Intn(len(selected))
	second := e.rng.Intn(len(selected) - 1)
	if second >= first {
		second++
	}
	better, worse := selected[first], selected[second]
	if worse.Score < better.Score {
		better, worse = worse, better
	}

	child, err := better.Candidate.Crossover(e.rng, worse.Candidate, betterParentBias)
	if err != nil {
		return nil, fmt.Errorf("crossover: %w", err)
	}
	child.Mutate(e.rng, rate)
	return child, nil
}

// AdaptiveRate scales the base mutation rate by the normalized spread of
// the generation's scores: base * (1 + (mean-min)/(max-min)). Equal scores
// are treated as zero spread. Higher disagreement raises mutation pressure.
func (e *Engine) AdaptiveRate(scored []Scored) float64 {
	if len(scored) == 0 {
		return e.cfg.BaseMutationRate
	}
	scores := make([]float64, len(scored))
	minScore, maxScore := scored[0].Score, scored[0].Score
	for i, item := range scored {
		scores[i] = item.Score
		if item.Score < minScore {
			minScore = item.Score
		}
		if item.Score > maxScore {
			maxScore = item.Score
		}
	}
	spread := 0.0
	if maxScore > minScore {
		spread = (stat.Mean(scores, nil) - minScore) / (maxScore - minScore)
	}
	rate := e.cfg.BaseMutationRate * (1 + spread)
	if rate > 1 {
		rate = 1
	}
	return rate
}

func summarize(scored []Scored) (best Scored, mean, worst float64) {
	best = scored[0]
	total := 0.0
	worst = scored[0].Score
	for _, item := range scored {
		total += item.Score
		if item.Score < best.Score {
			best = item
		}
		if item.Score > worst {
			worst = item.Score
		}
	}
	return best, total / float64(len(scored)), worst
}
