// Package scoring turns raw candidate attributes into [0,1] factor
// vectors. Company attributes normalize against the full directory so a
// candidate's score does not depend on who else was retrieved;
// graph-derived signals normalize within the candidate set because they
// only exist relative to the query.
package scoring

import (
	"math"

	"github.com/zeus1292/investorlens/pkg/persona"
	"github.com/zeus1292/investorlens/pkg/types"
)

// NeutralValue substitutes for missing attributes and degenerate ranges
// so absent data neither rewards nor punishes a candidate.
const NeutralValue = 0.5

type attrRange struct {
	min, max float64
	seen     bool
}

func (r attrRange) span() float64 { return r.max - r.min }

// Normalizer holds per-attribute ranges computed over the full company
// population. Build it once per dataset; it is immutable afterwards.
type Normalizer struct {
	ranges map[string]attrRange
}

// NewNormalizer scans the population and records min/max per attribute.
func NewNormalizer(population []types.Company) *Normalizer {
	ranges := make(map[string]attrRange)
	for _, c := range population {
		for name, v := range c.Attributes {
			r, ok := ranges[name]
			if !ok {
				ranges[name] = attrRange{min: v, max: v, seen: true}
				continue
			}
			r.min = math.Min(r.min, v)
			r.max = math.Max(r.max, v)
			ranges[name] = r
		}
	}
	return &Normalizer{ranges: ranges}
}

// Vectors computes one factor vector per candidate covering every factor
// the profile weights. Vector values are unweighted; multiplying by the
// profile weights and summing yields the composite score.
func (n *Normalizer) Vectors(candidates []types.Candidate, profile persona.Profile) []types.FactorVector {
	vectors := make([]types.FactorVector, len(candidates))
	for i := range vectors {
		vectors[i] = make(types.FactorVector, len(profile.Weights))
	}

	for factor := range profile.Weights {
		if factor == persona.GraphBoostFactor {
			for i := range candidates {
				vectors[i][factor] = GraphBoost(&candidates[i])
			}
			continue
		}

		src, known := persona.SourceFor(factor)
		if !known {
			for i := range vectors {
				vectors[i][factor] = NeutralValue
			}
			continue
		}
		invert := profile.IsInverted(factor)

		switch src.Kind {
		case persona.SourceQualitative:
			for i := range candidates {
				v := NeutralValue
				if raw, ok := candidates[i].Company.Attribute(src.Attribute); ok {
					v = clamp01(raw / 10.0)
				}
				if invert {
					v = 1.0 - v
				}
				vectors[i][factor] = v
			}

		case persona.SourceBinary:
			for i := range candidates {
				v := NeutralValue
				if raw, ok := candidates[i].Company.Attribute(src.Attribute); ok {
					if raw > 0 {
						v = 1.0
					} else {
						v = 0.0
					}
				}
				if invert {
					v = 1.0 - v
				}
				vectors[i][factor] = v
			}

		case persona.SourceFinancial, persona.SourceGrowth:
			r := n.ranges[src.Attribute]
			for i := range candidates {
				v := NeutralValue
				raw, ok := candidates[i].Company.Attribute(src.Attribute)
				if ok && r.seen && r.span() > 0 {
					v = (raw - r.min) / r.span()
					if invert {
						v = 1.0 - v
					}
				}
				vectors[i][factor] = v
			}

		case persona.SourceGraph:
			normalizeGraphFactor(candidates, vectors, factor, src.Attribute, invert)
		}
	}

	return vectors
}

// normalizeGraphFactor min-max normalizes a graph-derived signal within
// the candidate set. A flat signal is neutral for everyone.
func normalizeGraphFactor(candidates []types.Candidate, vectors []types.FactorVector, factor, attribute string, invert bool) {
	values := make([]float64, len(candidates))
	for i := range candidates {
		values[i] = graphValue(&candidates[i], attribute)
	}

	vmin, vmax := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		vmin = math.Min(vmin, v)
		vmax = math.Max(vmax, v)
	}
	span := vmax - vmin

	for i, v := range values {
		out := NeutralValue
		if span > 0 {
			out = (v - vmin) / span
			if invert {
				out = 1.0 - out
			}
		}
		vectors[i][factor] = out
	}
}

func graphValue(c *types.Candidate, attribute string) float64 {
	switch attribute {
	case "competitive_threat":
		return c.CompetitiveThreat
	case "partnership_fit":
		return c.PartnershipFit
	case "partnership_count":
		return float64(c.PartnershipCount)
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
