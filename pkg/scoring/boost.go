package scoring

import "github.com/zeus1292/investorlens/pkg/types"

// Graph boost contributions per connecting edge type. Contributions are
// additive, so a candidate both competing with and disrupting the subject
// outranks one doing only either. Theme overlap alone contributes nothing.
const (
	boostCompetesScale = 0.15 // scaled by competition strength
	boostCompetesFlat  = 0.10 // competes edge with no recorded strength
	boostDisrupts      = 0.10
	boostSameSegment   = 0.05
)

// GraphBoost computes the additive relevance boost for a candidate from
// the edge types that connected it to the query subject.
func GraphBoost(c *types.Candidate) float64 {
	et := c.EdgeTypes()
	boost := 0.0
	if et[types.EdgeCompetesWith] {
		if c.CompetitionStrength > 0 {
			boost += boostCompetesScale * c.CompetitionStrength
		} else {
			boost += boostCompetesFlat
		}
	}
	if et[types.EdgeDisrupts] {
		boost += boostDisrupts
	}
	if et[types.EdgeTargetsSameSegment] {
		boost += boostSameSegment
	}
	return boost
}
