package retrieval

import (
	"context"

	"github.com/zeus1292/investorlens/pkg/types"
)

// GraphPayload assembles the visualization subgraph for a candidate set:
// one node per subject and candidate, plus every edge between them.
// center marks which node the visualization should focus on.
func (r *Retriever) GraphPayload(ctx context.Context, set *types.CandidateSet, center string) (types.GraphPayload, error) {
	var payload types.GraphPayload
	seen := make(map[string]bool)
	var ids []string

	for _, id := range set.Subjects {
		if seen[id] {
			continue
		}
		seen[id] = true
		company, err := r.driver.GetCompany(ctx, id)
		if err != nil {
			return types.GraphPayload{}, err
		}
		payload.Nodes = append(payload.Nodes, types.GraphNode{
			ID:       id,
			Label:    company.Name,
			Sector:   company.Sector,
			IsCenter: id == center,
		})
		ids = append(ids, id)
	}

	for i := range set.Candidates {
		c := &set.Candidates[i].Company
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		payload.Nodes = append(payload.Nodes, types.GraphNode{
			ID:       c.ID,
			Label:    c.Name,
			Sector:   c.Sector,
			IsCenter: c.ID == center,
		})
		ids = append(ids, c.ID)
	}

	edges, err := r.driver.Subgraph(ctx, ids)
	if err != nil {
		return types.GraphPayload{}, err
	}
	payload.Edges = edges
	return payload, nil
}
