package types

// EdgeType identifies the relationship carried by an edge. The set is
// fixed by the external graph-build process.
type EdgeType string

const (
	EdgeCompetesWith          EdgeType = "COMPETES_WITH"
	EdgeDisrupts              EdgeType = "DISRUPTS"
	EdgePartnersWith          EdgeType = "PARTNERS_WITH"
	EdgeTargetsSameSegment    EdgeType = "TARGETS_SAME_SEGMENT"
	EdgeSharesInvestmentTheme EdgeType = "SHARES_INVESTMENT_THEME"
	EdgeSuppliesTo            EdgeType = "SUPPLIES_TO"
)

// AllEdgeTypes lists every edge type in declaration order.
var AllEdgeTypes = []EdgeType{
	EdgeCompetesWith,
	EdgeDisrupts,
	EdgePartnersWith,
	EdgeTargetsSameSegment,
	EdgeSharesInvestmentTheme,
	EdgeSuppliesTo,
}

// Symmetric reports whether the relationship is logically bidirectional.
// For symmetric types both directions may exist in the store; when they do,
// the maximum strength is authoritative.
func (t EdgeType) Symmetric() bool {
	switch t {
	case EdgeCompetesWith, EdgePartnersWith, EdgeTargetsSameSegment, EdgeSharesInvestmentTheme:
		return true
	}
	return false
}

// Direction indicates how an edge was traversed relative to the start node.
type Direction string

const (
	DirectionOut Direction = "out"
	DirectionIn  Direction = "in"
)

// Edge is a typed link between two companies with a strength in [0,1].
// Edges are set by the external graph-build process and read-only here.
type Edge struct {
	SourceID  string    `json:"source" yaml:"source"`
	TargetID  string    `json:"target" yaml:"target"`
	Type      EdgeType  `json:"type" yaml:"type"`
	Strength  float64   `json:"strength" yaml:"strength"`
	Direction Direction `json:"direction,omitempty" yaml:"direction,omitempty"`
}

// PairKey returns a canonical key for the (source, target, type) triple.
// Symmetric types order the endpoints so both directions collapse to one key.
func (e Edge) PairKey() string {
	a, b := e.SourceID, e.TargetID
	if e.Type.Symmetric() && b < a {
		a, b = b, a
	}
	return a + "|" + string(e.Type) + "|" + b
}

// Other returns the endpoint opposite to the given company.
func (e Edge) Other(id string) string {
	if e.SourceID == id {
		return e.TargetID
	}
	return e.SourceID
}

// DedupeEdges collapses duplicate edges onto a single record per pair,
// keeping the maximum strength for symmetric types that exist in both
// directions. Input order is preserved for first occurrences.
func DedupeEdges(edges []Edge) []Edge {
	seen := make(map[string]int, len(edges))
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		key := e.PairKey()
		if i, ok := seen[key]; ok {
			if e.Strength > out[i].Strength {
				out[i].Strength = e.Strength
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, e)
	}
	return out
}
