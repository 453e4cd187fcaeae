package evolve

import (
	"fmt"
	"sort"

	"kybernetes/internal/candidate"
)

// Scored tags a candidate with its position in the evaluated population and
// its generation score. Association is index-based on purpose: candidates
// are not assumed hashable or comparable by identity across implementations.
type Scored struct {
	Index     int
	Candidate candidate.Candidate
	Score     float64
}

// Selector reduces a scored population to the set that seeds the next
// generation.
type Selector interface {
	Name() string
	Select(scored []Scored, topK int) ([]Scored, error)
}

// EliteSelector keeps the topK candidates by best (lowest) score.
type EliteSelector struct{}

func (EliteSelector) Name() string { return "elite" }

func (EliteSelector) Select(scored []Scored, topK int) ([]Scored, error) {
	if topK <= 0 || topK > len(scored) {
		return nil, fmt.Errorf("invalid top k: %d for population %d", topK, len(scored))
	}
	ranked := cloneScored(scored)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score < ranked[j].Score })
	return ranked[:topK], nil
}

// DiversitySelector implements score-seeded diversity selection: the topK
// best-scoring candidates form a reference set, every candidate is ranked by
// the weighted sum of its parameter distance to each reference member, and
// the topK most diverse become the selected set. A diverse-but-mediocre
// candidate can therefore outrank a top performer; that asymmetry is the
// selection pressure, not an accident.
type DiversitySelector struct {
	// Rate weights diversity against raw score when ranking. 1 ranks by
	// diversity alone; values below 1 blend the (negated) score back in.
	Rate float64
}

func (DiversitySelector) Name() string { return "diversity" }

func (s DiversitySelector) Select(scored []Scored, topK int) ([]Scored, error) {
	if topK <= 0 || topK > len(scored) {
		return nil, fmt.Errorf("invalid top k: %d for population %d", topK, len(scored))
	}
	rate := s.Rate
	if rate <= 0 || rate > 1 {
		rate = 1
	}

	reference := cloneScored(scored)
	sort.SliceStable(reference, func(i, j int) bool { return reference[i].Score < reference[j].Score })
	reference = reference[:topK]

	type divergence struct {
		item Scored
		rank float64
	}
	ranked := make([]divergence, 0, len(scored))
	for _, item := range scored {
		total := 0.0
		for _, ref := range reference {
			d, err := item.Candidate.Distance(ref.Candidate)
			if err != nil {
				return nil, fmt.Errorf("distance for candidate %d: %w", item.Index, err)
			}
			total += d
		}
		ranked = append(ranked, divergence{item: item, rank: rate*total - (1-rate)*item.Score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].rank > ranked[j].rank })

	out := make([]Scored, 0, topK)
	for _, entry := range ranked[:topK] {
		out = append(out, entry.item)
	}
	return out, nil
}

// NewSelector resolves a selector by name; empty defaults to diversity.
func NewSelector(name string, diversityRate float64) (Selector, error) {
	switch name {
	case "", "diversity":
		return DiversitySelector{Rate: diversityRate}, nil
	case "elite":
		return EliteSelector{}, nil
	default:
		return nil, fmt.Errorf("unsupported selector: %s", name)
	}
}

func cloneScored(scored []Scored) []Scored {
	out := make([]Scored, len(scored))
	copy(out, scored)
	return out
}
