// Package driver provides access to the company relationship graph.
// Two implementations exist: Neo4jDriver for the production store and
// MemoryDriver for fixtures and tests. BreakerDriver wraps either with a
// circuit breaker.
package driver

import (
	"context"

	"github.com/zeus1292/investorlens/pkg/types"
)

// GraphDriver is the read-only view of the relationship graph consumed
// by retrieval. Implementations must be safe for concurrent use.
//
// All edge-returning methods report edges with Direction set relative to
// the queried company and duplicates already collapsed per DedupeEdges.
type GraphDriver interface {
	// GetCompany returns one company by id, or ErrCompanyNotFound.
	GetCompany(ctx context.Context, id string) (types.Company, error)

	// ListCompanies returns the full directory ordered by id.
	ListCompanies(ctx context.Context) ([]types.Company, error)

	// Neighbors returns the one-hop edges touching id, restricted to the
	// given edge types. An empty type list means all types.
	Neighbors(ctx context.Context, id string, edgeTypes []types.EdgeType) ([]types.Edge, error)

	// EdgesBetween returns every edge directly connecting a and b.
	EdgesBetween(ctx context.Context, a, b string) ([]types.Edge, error)

	// CommonNeighbors returns ids connected to both a and b by the given
	// edge type, excluding a and b themselves, ordered by id.
	CommonNeighbors(ctx context.Context, a, b string, edgeType types.EdgeType) ([]string, error)

	// PartnerCounts returns the number of distinct PARTNERS_WITH
	// neighbors for each requested id. Ids with no partners are omitted
	// from the map.
	PartnerCounts(ctx context.Context, ids []string) (map[string]int, error)

	// Subgraph returns all edges whose endpoints are both in ids.
	Subgraph(ctx context.Context, ids []string) ([]types.Edge, error)

	// Close releases driver resources.
	Close(ctx context.Context) error
}
