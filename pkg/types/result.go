package types

// FactorVector maps canonical factor names to [0,1]-normalized values.
type FactorVector map[string]float64

// Candidate is a company under consideration for a ranked result set,
// together with the graph context that justified its inclusion.
type Candidate struct {
	Company Company `json:"company"`

	// Edges connect this candidate to the query subject(s), deduplicated
	// by max strength per pair.
	Edges []Edge `json:"edges,omitempty"`

	// Graph-derived signals computed during retrieval.
	CompetitionStrength float64 `json:"competition_strength,omitempty"`
	CompetitiveThreat   float64 `json:"competitive_threat,omitempty"`
	PartnershipFit      float64 `json:"partnership_fit,omitempty"`
	PartnershipCount    int     `json:"partnership_count,omitempty"`
}

// EdgeTypes returns the set of edge types connecting the candidate to the
// subject.
func (c *Candidate) EdgeTypes() map[EdgeType]bool {
	set := make(map[EdgeType]bool, len(c.Edges))
	for _, e := range c.Edges {
		set[e.Type] = true
	}
	return set
}

// CandidateSet is the output of graph retrieval for one query.
type CandidateSet struct {
	Candidates []Candidate  `json:"candidates"`
	Subjects   []string     `json:"subjects"`
	Compare    *CompareData `json:"compare,omitempty"`
}

// CompareData holds the extra structure retrieved for compare-two queries.
type CompareData struct {
	SubjectA          *Candidate `json:"company_a,omitempty"`
	SubjectB          *Candidate `json:"company_b,omitempty"`
	DirectEdges       []Edge     `json:"direct_edges,omitempty"`
	CommonCompetitors []string   `json:"common_competitors,omitempty"`

	// CommonProfiles carries the full records behind CommonCompetitors,
	// in the same order.
	CommonProfiles []Candidate `json:"common_profiles,omitempty"`

	SharedSegments bool `json:"shared_segments"`
	SharedThemes   bool `json:"shared_themes"`
}

// ScoredResult is one ranked company. Breakdown maps each factor that
// contributed a non-zero normalized value; re-summing value x weight over
// the persona's declared factors reproduces CompositeScore exactly.
type ScoredResult struct {
	Rank           int          `json:"rank"`
	CompanyID      string       `json:"company_id"`
	Name           string       `json:"name"`
	CompositeScore float64      `json:"composite_score"`
	Breakdown      FactorVector `json:"score_breakdown,omitempty"`
	GraphContext   []Edge       `json:"graph_context,omitempty"`
}

// GraphNode is one node of the visualization payload.
type GraphNode struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Sector   Sector `json:"sector,omitempty"`
	IsCenter bool   `json:"is_center"`
}

// GraphPayload is the subgraph touched during retrieval, with edges
// deduplicated, suitable for external visualization.
type GraphPayload struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []Edge      `json:"edges"`
}

// PersonaResults holds one persona's slice of an all-personas response.
type PersonaResults struct {
	Persona        string         `json:"persona"`
	PersonaDisplay string         `json:"persona_display"`
	Results        []ScoredResult `json:"results"`
}

// SearchMetadata carries per-request bookkeeping.
type SearchMetadata struct {
	RequestID      string `json:"request_id"`
	ElapsedMS      int64  `json:"elapsed_ms"`
	CandidateCount int    `json:"candidate_count"`
	Retried        bool   `json:"retried,omitempty"`
}

// SearchResponse is the sole data contract between the search core and
// the API/explanation/UI layers.
type SearchResponse struct {
	Query          ParsedQuery               `json:"query"`
	Persona        string                    `json:"persona"`
	PersonaDisplay string                    `json:"persona_display"`
	Results        []ScoredResult            `json:"results"`
	Compare        *CompareData              `json:"compare_data,omitempty"`
	Graph          GraphPayload              `json:"graph_data"`
	AllPersonas    map[string]PersonaResults `json:"all_personas,omitempty"`
	Metadata       SearchMetadata            `json:"metadata"`
}
