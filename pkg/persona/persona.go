// Package persona holds the static configuration store of the five
// investor personas and the mapping from scoring factors to the raw data
// they are derived from. Profiles are built once and never mutated.
package persona

import (
	"fmt"

	"github.com/zeus1292/investorlens/pkg/types"
)

// GraphBoostFactor is the dedicated factor that carries the additive
// graph-relevance boost. Every persona weights it positively by default.
const GraphBoostFactor = "graph_boost"

// Canonical persona identifiers.
const (
	ValueInvestor     = "value_investor"
	PEFirm            = "pe_firm"
	GrowthVC          = "growth_vc"
	StrategicAcquirer = "strategic_acquirer"
	EnterpriseBuyer   = "enterprise_buyer"
)

// Profile is one persona's scoring configuration.
type Profile struct {
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name"`
	Description string             `json:"description"`
	Weights     map[string]float64 `json:"weights"`

	// GraphPriority lists the edge types this persona cares about most,
	// consumed by UI layers for emphasis only.
	GraphPriority []types.EdgeType `json:"graph_priority"`

	// Inverted marks factors where a lower raw value scores higher.
	Inverted map[string]bool `json:"inverted,omitempty"`
}

// IsInverted reports whether a factor scores inversely to its raw value.
func (p Profile) IsInverted(factor string) bool { return p.Inverted[factor] }

// Store resolves persona ids to immutable weight profiles.
type Store struct {
	profiles map[string]Profile
	order    []string
}

// NewStore builds the canonical five-persona store.
func NewStore() *Store {
	order := []string{ValueInvestor, PEFirm, GrowthVC, StrategicAcquirer, EnterpriseBuyer}
	profiles := map[string]Profile{
		ValueInvestor: {
			Name:        ValueInvestor,
			DisplayName: "Value Investor",
			Description: "Seeks durable moats, strong free cash flow, high switching costs, and reasonable valuations.",
			Weights: map[string]float64{
				"moat_durability":          0.25,
				"free_cash_flow_positive":  0.20,
				"customer_switching_cost":  0.20,
				"low_debt":                 0.15,
				"revenue_predictability":   0.10,
				"valuation_margin":         0.10,
				GraphBoostFactor:           1.0,
			},
			GraphPriority: []types.EdgeType{types.EdgeSharesInvestmentTheme, types.EdgeCompetesWith},
			Inverted:      map[string]bool{"low_debt": true, "valuation_margin": true},
		},
		PEFirm: {
			Name:        PEFirm,
			DisplayName: "PE Firm",
			Description: "Targets high margins, operational improvement upside, predictable revenue, and reasonable valuation multiples.",
			Weights: map[string]float64{
				"operating_margin":                  0.25,
				"operational_improvement_potential": 0.20,
				"revenue_predictability":            0.20,
				"valuation_margin":                  0.15,
				"customer_switching_cost":           0.10,
				"enterprise_readiness_score":        0.10,
				GraphBoostFactor:                    1.0,
			},
			GraphPriority: []types.EdgeType{types.EdgeTargetsSameSegment, types.EdgeCompetesWith},
			Inverted:      map[string]bool{"valuation_margin": true},
		},
		GrowthVC: {
			Name:        GrowthVC,
			DisplayName: "Growth VC",
			Description: "Prioritizes fast growth, TAM capture, developer traction, and market timing over profitability.",
			Weights: map[string]float64{
				"yoy_employee_growth":      0.25,
				"market_timing_score":      0.25,
				"developer_adoption_score": 0.20,
				"github_stars_normalized":  0.15,
				"product_maturity_inverse": 0.15,
				GraphBoostFactor:           1.0,
			},
			GraphPriority: []types.EdgeType{types.EdgeDisrupts, types.EdgeTargetsSameSegment},
			Inverted:      map[string]bool{"product_maturity_inverse": true},
		},
		StrategicAcquirer: {
			Name:        StrategicAcquirer,
			DisplayName: "Strategic Acquirer",
			Description: "Evaluates tech differentiation, partnership fit, competitive threat neutralization, and acquirability.",
			Weights: map[string]float64{
				"moat_durability":          0.25,
				"partnership_fit":          0.20,
				"competitive_threat":       0.20,
				"developer_adoption_score": 0.15,
				"small_enough_to_acquire":  0.10,
				"product_maturity_score":   0.10,
				GraphBoostFactor:           1.0,
			},
			GraphPriority: []types.EdgeType{types.EdgeDisrupts, types.EdgePartnersWith, types.EdgeCompetesWith},
			Inverted:      map[string]bool{"small_enough_to_acquire": true},
		},
		EnterpriseBuyer: {
			Name:        EnterpriseBuyer,
			DisplayName: "Enterprise Buyer",
			Description: "Values product maturity, enterprise readiness, ecosystem integrations, and low vendor lock-in risk.",
			Weights: map[string]float64{
				"product_maturity_score":          0.25,
				"enterprise_readiness_score":      0.20,
				"partnership_count":               0.20,
				"customer_switching_cost_inverse": 0.15,
				"revenue_predictability":          0.10,
				"developer_adoption_score":        0.10,
				GraphBoostFactor:                  1.0,
			},
			GraphPriority: []types.EdgeType{types.EdgeTargetsSameSegment, types.EdgePartnersWith},
			Inverted:      map[string]bool{"customer_switching_cost_inverse": true},
		},
	}
	return &Store{profiles: profiles, order: order}
}

// WeightsFor returns the profile for a persona id.
func (s *Store) WeightsFor(id string) (Profile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", types.ErrUnknownPersona, id)
	}
	return p, nil
}

// List returns all profiles in canonical order.
func (s *Store) List() []Profile {
	out := make([]Profile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.profiles[id])
	}
	return out
}

// Names returns the canonical persona ids in order.
func (s *Store) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
