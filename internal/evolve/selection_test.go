package evolve

import (
	"testing"
)

func TestEliteSelectorKeepsBestScores(t *testing.T) {
	scored := []Scored{
		{Index: 0, Candidate: newStub("a", 0), Score: 0.9},
		{Index: 1, Candidate: newStub("b", 1), Score: 0.1},
		{Index: 2, Candidate: newStub("c", 2), Score: 0.5},
	}
	selected, err := EliteSelector{}.Select(scored, 2)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("expected 2 selected, got %d", len(selected))
	}
	if selected[0].Index != 1 || selected[1].Index != 2 {
		t.Fatalf("unexpected elite order: %+v", selected)
	}
}

func TestSelectorsRejectInvalidTopK(t *testing.T) {
	scored := []Scored{{Index: 0, Candidate: newStub("a", 0), Score: 1}}
	if _, err := (EliteSelector{}).Select(scored, 0); err == nil {
		t.Fatal("expected error for zero top k")
	}
	if _, err := (DiversitySelector{}).Select(scored, 2); err == nil {
		t.Fatal("expected error for top k above population")
	}
}

func TestDiversitySelectorReturnsMembersOfThePopulation(t *testing.T) {
	scored := []Scored{
		{Index: 0, Candidate: newStub("a", 0.0), Score: 0.1},
		{Index: 1, Candidate: newStub("b", 0.1), Score: 0.2},
		{Index: 2, Candidate: newStub("c", 10.0), Score: 5.0},
		{Index: 3, Candidate: newStub("d", 0.2), Score: 0.3},
	}
	selected, err := DiversitySelector{}.Select(scored, 2)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("expected exactly 2 selected, got %d", len(selected))
	}
	byIndex := map[int]Scored{}
	for _, item := range scored {
		byIndex[item.Index] = item
	}
	for _, item := range selected {
		original, ok := byIndex[item.Index]
		if !ok || original.Candidate != item.Candidate {
			t.Fatalf("selected candidate not from the original population: %+v", item)
		}
	}
}

func TestDiverseButMediocreCandidateCanOutrankTopPerformer(t *testing.T) {
	// Reference set by score is {a, b}; c scores worst but sits far away
	// from both, so diversity re-ranking promotes it over b.
	scored := []Scored{
		{Index: 0, Candidate: newStub("a", 0.0), Score: 0.1},
		{Index: 1, Candidate: newStub("b", 0.1), Score: 0.2},
		{Index: 2, Candidate: newStub("c", 10.0), Score: 5.0},
	}
	selected, err := DiversitySelector{}.Select(scored, 2)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	found := false
	for _, item := range selected {
		if item.Index == 2 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the diverse outlier in the selected set, got %+v", selected)
	}
}

func TestDiversityRateBlendsScoreBackIn(t *testing.T) {
	// With a tiny diversity weight the raw score dominates and the
	// outlier is excluded again.
	scored := []Scored{
		{Index: 0, Candidate: newStub("a", 0.0), Score: 0.1},
		{Index: 1, Candidate: newStub("b", 0.1), Score: 0.2},
		{Index: 2, Candidate: newStub("c", 10.0), Score: 500.0},
	}
	selected, err := DiversitySelector{Rate: 0.001}.Select(scored, 2)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for _, item := range selected {
		if item.Index == 2 {
			t.Fatalf("expected score-dominated ranking to exclude the outlier, got %+v", selected)
		}
	}
}

func TestNewSelector(t *testing.T) {
	if _, err := NewSelector("", 0); err != nil {
		t.Fatalf("default selector: %v", err)
	}
	if _, err := NewSelector("elite", 0); err != nil {
		t.Fatalf("elite selector: %v", err)
	}
	if _, err := NewSelector("roulette", 0); err == nil {
		t.Fatal("expected error for unknown selector")
	}
}
