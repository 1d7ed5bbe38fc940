package ranking

import (
	"math"
	"reflect"
	"testing"

	"github.com/zeus1292/investorlens/pkg/persona"
	"github.com/zeus1292/investorlens/pkg/scoring"
	"github.com/zeus1292/investorlens/pkg/types"
)

func cand(id string) types.Candidate {
	return types.Candidate{Company: types.Company{ID: id, Name: id}}
}

func TestRankOrdersByCompositeDescending(t *testing.T) {
	profile := persona.Profile{Weights: map[string]float64{"f": 1.0}}
	candidates := []types.Candidate{cand("a"), cand("b"), cand("c")}
	vectors := []types.FactorVector{{"f": 0.2}, {"f": 0.9}, {"f": 0.5}}

	results := Rank(candidates, vectors, profile, 0)
	wantOrder := []string{"b", "c", "a"}
	for i, want := range wantOrder {
		if results[i].CompanyID != want {
			t.Errorf("rank %d = %s, want %s", i+1, results[i].CompanyID, want)
		}
		if results[i].Rank != i+1 {
			t.Errorf("result %s has rank %d, want %d", results[i].CompanyID, results[i].Rank, i+1)
		}
	}
}

func TestRankTieBreaksOnCompanyID(t *testing.T) {
	profile := persona.Profile{Weights: map[string]float64{"f": 1.0}}
	candidates := []types.Candidate{cand("zeta"), cand("alpha"), cand("mid")}
	vectors := []types.FactorVector{{"f": 0.5}, {"f": 0.5}, {"f": 0.5}}

	results := Rank(candidates, vectors, profile, 0)
	wantOrder := []string{"alpha", "mid", "zeta"}
	for i, want := range wantOrder {
		if results[i].CompanyID != want {
			t.Errorf("tied rank %d = %s, want %s (ascending id)", i+1, results[i].CompanyID, want)
		}
	}
}

func TestRankIsDeterministic(t *testing.T) {
	profile := persona.Profile{Weights: map[string]float64{"x": 0.6, "y": 0.4}}
	candidates := []types.Candidate{cand("a"), cand("b"), cand("c"), cand("d")}
	vectors := []types.FactorVector{
		{"x": 0.5, "y": 0.75},
		{"x": 0.75, "y": 0.375},
		{"x": 1.0, "y": 0.0},
		{"x": 0.0, "y": 1.5},
	}

	first := Rank(candidates, vectors, profile, 0)
	for run := 0; run < 50; run++ {
		again := Rank(candidates, vectors, profile, 0)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different ranking", run)
		}
	}
}

func TestRankBreakdownReproducesComposite(t *testing.T) {
	profile := persona.Profile{Weights: map[string]float64{
		"moat_durability": 0.25,
		"low_debt":        0.15,
		"graph_boost":     1.0,
	}}
	candidates := []types.Candidate{cand("a")}
	vectors := []types.FactorVector{{
		"moat_durability": 0.8,
		"low_debt":        0.0, // contributed nothing, must be absent from breakdown
		"graph_boost":     0.22,
	}}

	results := Rank(candidates, vectors, profile, 0)
	r := results[0]

	if _, present := r.Breakdown["low_debt"]; present {
		t.Error("zero-valued factor appears in breakdown")
	}

	resum := 0.0
	for factor, weight := range profile.Weights {
		resum += r.Breakdown[factor] * weight
	}
	if math.Abs(resum-r.CompositeScore) > 1e-12 {
		t.Errorf("breakdown re-sum = %v, composite = %v; must match", resum, r.CompositeScore)
	}
}

func TestRankTopNLimits(t *testing.T) {
	profile := persona.Profile{Weights: map[string]float64{"f": 1.0}}
	var candidates []types.Candidate
	var vectors []types.FactorVector
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		candidates = append(candidates, cand(id))
		vectors = append(vectors, types.FactorVector{"f": float64(len(candidates)) / 10})
	}

	results := Rank(candidates, vectors, profile, 2)
	if len(results) != 2 {
		t.Fatalf("topN=2 returned %d results", len(results))
	}
	if results[0].CompanyID != "e" || results[1].CompanyID != "d" {
		t.Errorf("top 2 = %s, %s; want e, d", results[0].CompanyID, results[1].CompanyID)
	}
}

func TestRankMissingAttributeMatchesNeutralRawScore(t *testing.T) {
	profile := persona.Profile{Weights: map[string]float64{
		"moat_durability":            0.30,
		"enterprise_readiness_score": 0.20,
	}}
	// Identical companies except one carries the moat score at mid-scale
	// and the other lacks it entirely.
	pop := []types.Company{
		{ID: "scored", Name: "scored", Attributes: map[string]float64{
			"moat_durability":            5.0,
			"enterprise_readiness_score": 7.0,
		}},
		{ID: "unscored", Name: "unscored", Attributes: map[string]float64{
			"enterprise_readiness_score": 7.0,
		}},
	}
	candidates := []types.Candidate{{Company: pop[0]}, {Company: pop[1]}}
	vectors := scoring.NewNormalizer(pop).Vectors(candidates, profile)

	results := Rank(candidates, vectors, profile, 0)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].CompositeScore != results[1].CompositeScore {
		t.Errorf("raw 5.0 composite %v != missing-attribute composite %v; a mid-scale score and absent data must be equivalent",
			results[0].CompositeScore, results[1].CompositeScore)
	}
}

func TestRankEmptyCandidates(t *testing.T) {
	profile := persona.Profile{Weights: map[string]float64{"f": 1.0}}
	results := Rank(nil, nil, profile, 10)
	if len(results) != 0 {
		t.Errorf("empty candidate set produced %d results", len(results))
	}
}
