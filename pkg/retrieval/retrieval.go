// Package retrieval pulls candidate companies out of the relationship
// graph for each query intent. Every strategy returns a CandidateSet
// carrying the edges that justified each candidate, ready for scoring.
package retrieval

import (
	"context"
	"log/slog"
	"sort"

	"github.com/zeus1292/investorlens/pkg/driver"
	"github.com/zeus1292/investorlens/pkg/persona"
	"github.com/zeus1292/investorlens/pkg/types"
)

// DefaultAttributeLimit caps how many companies an attribute ranking
// considers before persona scoring.
const DefaultAttributeLimit = 20

// Retriever composes graph driver primitives into per-intent retrieval.
type Retriever struct {
	driver driver.GraphDriver
	log    *slog.Logger

	// AttributeLimit overrides DefaultAttributeLimit when positive.
	AttributeLimit int
}

// New builds a Retriever over the given driver.
func New(d driver.GraphDriver, log *slog.Logger) *Retriever {
	if log == nil {
		log = slog.Default()
	}
	return &Retriever{driver: d, log: log}
}

// Retrieve dispatches on the query type.
func (r *Retriever) Retrieve(ctx context.Context, q types.ParsedQuery) (*types.CandidateSet, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	switch q.Type {
	case types.QueryFindCompetitors:
		return r.Competitors(ctx, q.Subject)
	case types.QueryCompareTwo:
		return r.Compare(ctx, q.Subject, q.CompareWith)
	case types.QueryAcquisitionTarget:
		return r.AcquisitionTargets(ctx, q.Acquirer, q.Subject)
	default:
		return r.AttributeRanking(ctx, q.Attribute, q.Sector)
	}
}

// Competitors finds companies connected to the subject by competitive,
// disruptive, or segment edges. Theme overlap alone does not qualify a
// company as a competitor; those candidates are dropped, though theme
// edges on otherwise-qualified candidates are kept as context.
func (r *Retriever) Competitors(ctx context.Context, subject string) (*types.CandidateSet, error) {
	if _, err := r.driver.GetCompany(ctx, subject); err != nil {
		return nil, err
	}

	edges, err := r.driver.Neighbors(ctx, subject, []types.EdgeType{
		types.EdgeCompetesWith,
		types.EdgeDisrupts,
		types.EdgeTargetsSameSegment,
		types.EdgeSharesInvestmentTheme,
	})
	if err != nil {
		return nil, err
	}

	byCompany := groupBySubjectNeighbor(edges, subject)
	ids := sortedKeys(byCompany)

	var candidates []types.Candidate
	for _, id := range ids {
		connecting := byCompany[id]
		if themeOnly(connecting) {
			continue
		}
		company, err := r.driver.GetCompany(ctx, id)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, types.Candidate{
			Company:             company,
			Edges:               connecting,
			CompetitionStrength: maxStrength(connecting, types.EdgeCompetesWith),
		})
	}

	if err := r.enrichPartnerCounts(ctx, candidates); err != nil {
		return nil, err
	}
	r.log.Debug("retrieved competitors", "subject", subject, "candidates", len(candidates))
	return &types.CandidateSet{Candidates: candidates, Subjects: []string{subject}}, nil
}

// Compare retrieves both companies plus the structure connecting them:
// direct edges, competitors they share, and segment/theme overlap.
// Common competitors join the candidate set with their connecting edges,
// so they are scored and ranked alongside the two subjects.
func (r *Retriever) Compare(ctx context.Context, a, b string) (*types.CandidateSet, error) {
	companyA, err := r.driver.GetCompany(ctx, a)
	if err != nil {
		return nil, err
	}
	companyB, err := r.driver.GetCompany(ctx, b)
	if err != nil {
		return nil, err
	}

	direct, err := r.driver.EdgesBetween(ctx, a, b)
	if err != nil {
		return nil, err
	}
	common, err := r.driver.CommonNeighbors(ctx, a, b, types.EdgeCompetesWith)
	if err != nil {
		return nil, err
	}

	sharedSegments := false
	sharedThemes := false
	for _, e := range direct {
		switch e.Type {
		case types.EdgeTargetsSameSegment:
			sharedSegments = true
		case types.EdgeSharesInvestmentTheme:
			sharedThemes = true
		}
	}

	candidates := []types.Candidate{
		{
			Company:             companyA,
			Edges:               direct,
			CompetitionStrength: maxStrength(direct, types.EdgeCompetesWith),
		},
		{
			Company:             companyB,
			Edges:               direct,
			CompetitionStrength: maxStrength(direct, types.EdgeCompetesWith),
		},
	}
	for _, id := range common {
		company, err := r.driver.GetCompany(ctx, id)
		if err != nil {
			return nil, err
		}
		toA, err := r.driver.EdgesBetween(ctx, id, a)
		if err != nil {
			return nil, err
		}
		toB, err := r.driver.EdgesBetween(ctx, id, b)
		if err != nil {
			return nil, err
		}
		connecting := append(toA, toB...)
		candidates = append(candidates, types.Candidate{
			Company:             company,
			Edges:               connecting,
			CompetitionStrength: maxStrength(connecting, types.EdgeCompetesWith),
		})
	}
	if err := r.enrichPartnerCounts(ctx, candidates); err != nil {
		return nil, err
	}

	r.log.Debug("retrieved comparison", "a", a, "b", b, "common", len(common))
	return &types.CandidateSet{
		Candidates: candidates,
		Subjects:   []string{a, b},
		Compare: &types.CompareData{
			SubjectA:          &candidates[0],
			SubjectB:          &candidates[1],
			DirectEdges:       direct,
			CommonCompetitors: common,
			CommonProfiles:    append([]types.Candidate(nil), candidates[2:]...),
			SharedSegments:    sharedSegments,
			SharedThemes:      sharedThemes,
		},
	}, nil
}

// AcquisitionTargets finds companies the acquirer could buy to counter
// the threat company: anyone competing with, disrupting, or sharing a
// segment with the threat. The acquirer and the threat are excluded, as
// is any company the acquirer already competes with head-on, since
// buying a direct rival is a different play than buying a counter.
// Existing partners of the acquirer get their partnership strength
// recorded as fit.
func (r *Retriever) AcquisitionTargets(ctx context.Context, acquirer, threat string) (*types.CandidateSet, error) {
	if _, err := r.driver.GetCompany(ctx, acquirer); err != nil {
		return nil, err
	}
	if _, err := r.driver.GetCompany(ctx, threat); err != nil {
		return nil, err
	}

	edges, err := r.driver.Neighbors(ctx, threat, []types.EdgeType{
		types.EdgeCompetesWith,
		types.EdgeDisrupts,
		types.EdgeTargetsSameSegment,
	})
	if err != nil {
		return nil, err
	}

	acquirerRivals, err := r.driver.Neighbors(ctx, acquirer, []types.EdgeType{types.EdgeCompetesWith})
	if err != nil {
		return nil, err
	}
	rivalSet := make(map[string]bool, len(acquirerRivals))
	for _, e := range acquirerRivals {
		rivalSet[e.Other(acquirer)] = true
	}

	acquirerPartners, err := r.driver.Neighbors(ctx, acquirer, []types.EdgeType{types.EdgePartnersWith})
	if err != nil {
		return nil, err
	}
	partnerStrength := make(map[string]float64, len(acquirerPartners))
	partnerEdge := make(map[string]types.Edge, len(acquirerPartners))
	for _, e := range acquirerPartners {
		id := e.Other(acquirer)
		if e.Strength > partnerStrength[id] || partnerEdge[id].Type == "" {
			partnerStrength[id] = e.Strength
			partnerEdge[id] = e
		}
	}

	byCompany := groupBySubjectNeighbor(edges, threat)

	var candidates []types.Candidate
	for _, id := range sortedKeys(byCompany) {
		if id == acquirer || rivalSet[id] {
			continue
		}
		connecting := byCompany[id]
		company, err := r.driver.GetCompany(ctx, id)
		if err != nil {
			return nil, err
		}
		cand := types.Candidate{
			Company:           company,
			Edges:             connecting,
			CompetitiveThreat: threatStrength(connecting),
		}
		if fit, ok := partnerStrength[id]; ok {
			cand.PartnershipFit = fit
			cand.Edges = append(cand.Edges, partnerEdge[id])
		}
		candidates = append(candidates, cand)
	}

	if err := r.enrichPartnerCounts(ctx, candidates); err != nil {
		return nil, err
	}
	r.log.Debug("retrieved acquisition targets",
		"acquirer", acquirer, "threat", threat, "candidates", len(candidates))
	return &types.CandidateSet{Candidates: candidates, Subjects: []string{acquirer, threat}}, nil
}

// AttributeRanking pulls the directory, keeps companies that carry the
// attribute (optionally within one sector), and returns the top slice by
// raw value. Unknown attributes fall back to moat durability.
func (r *Retriever) AttributeRanking(ctx context.Context, attribute string, sector types.Sector) (*types.CandidateSet, error) {
	if !isRankable(attribute) {
		r.log.Debug("unknown ranking attribute, falling back", "attribute", attribute)
		attribute = "moat_durability"
	}

	companies, err := r.driver.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []types.Candidate
	for _, c := range companies {
		if sector != "" && c.Sector != sector {
			continue
		}
		if _, ok := c.Attribute(attribute); !ok {
			continue
		}
		candidates = append(candidates, types.Candidate{Company: c})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		vi, _ := candidates[i].Company.Attribute(attribute)
		vj, _ := candidates[j].Company.Attribute(attribute)
		if vi != vj {
			return vi > vj
		}
		return candidates[i].Company.ID < candidates[j].Company.ID
	})

	limit := r.AttributeLimit
	if limit <= 0 {
		limit = DefaultAttributeLimit
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	if err := r.enrichPartnerCounts(ctx, candidates); err != nil {
		return nil, err
	}
	return &types.CandidateSet{Candidates: candidates}, nil
}

func (r *Retriever) enrichPartnerCounts(ctx context.Context, candidates []types.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	ids := make([]string, len(candidates))
	for i := range candidates {
		ids[i] = candidates[i].Company.ID
	}
	counts, err := r.driver.PartnerCounts(ctx, ids)
	if err != nil {
		return err
	}
	for i := range candidates {
		candidates[i].PartnershipCount = counts[candidates[i].Company.ID]
	}
	return nil
}

// groupBySubjectNeighbor buckets edges by the endpoint opposite the
// subject.
func groupBySubjectNeighbor(edges []types.Edge, subject string) map[string][]types.Edge {
	byCompany := make(map[string][]types.Edge)
	for _, e := range edges {
		other := e.Other(subject)
		if other == subject {
			continue
		}
		byCompany[other] = append(byCompany[other], e)
	}
	return byCompany
}

func sortedKeys(m map[string][]types.Edge) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func themeOnly(edges []types.Edge) bool {
	for _, e := range edges {
		if e.Type != types.EdgeSharesInvestmentTheme {
			return false
		}
	}
	return true
}

func maxStrength(edges []types.Edge, et types.EdgeType) float64 {
	best := 0.0
	for _, e := range edges {
		if e.Type == et && e.Strength > best {
			best = e.Strength
		}
	}
	return best
}

// threatStrength is the strongest competitive or disruptive connection
// to the threat company.
func threatStrength(edges []types.Edge) float64 {
	best := 0.0
	for _, e := range edges {
		if (e.Type == types.EdgeCompetesWith || e.Type == types.EdgeDisrupts) && e.Strength > best {
			best = e.Strength
		}
	}
	return best
}

func isRankable(attribute string) bool {
	for _, a := range persona.RankableAttributes {
		if a == attribute {
			return true
		}
	}
	return false
}
