// Package ranking assembles composite scores from factor vectors and
// persona weights and orders the results. It is pure computation: the
// same inputs always produce the same ranked list.
package ranking

import (
	"sort"

	"github.com/zeus1292/investorlens/pkg/persona"
	"github.com/zeus1292/investorlens/pkg/types"
)

// Rank scores each candidate against the profile and returns results in
// descending composite order. Ties break on ascending company id so
// equal scores never reshuffle between runs. topN limits the output;
// zero or negative means no limit.
//
// vectors must be parallel to candidates, one factor vector each.
func Rank(candidates []types.Candidate, vectors []types.FactorVector, profile persona.Profile, topN int) []types.ScoredResult {
	results := make([]types.ScoredResult, 0, len(candidates))
	for i := range candidates {
		composite := 0.0
		breakdown := make(types.FactorVector)
		for factor, weight := range profile.Weights {
			value := vectors[i][factor]
			composite += value * weight
			if value != 0 {
				breakdown[factor] = value
			}
		}
		results = append(results, types.ScoredResult{
			CompanyID:      candidates[i].Company.ID,
			Name:           candidates[i].Company.Name,
			CompositeScore: composite,
			Breakdown:      breakdown,
			GraphContext:   candidates[i].Edges,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CompositeScore != results[j].CompositeScore {
			return results[i].CompositeScore > results[j].CompositeScore
		}
		return results[i].CompanyID < results[j].CompanyID
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results
}
