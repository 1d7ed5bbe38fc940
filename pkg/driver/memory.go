package driver

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/zeus1292/investorlens/pkg/types"
	"gopkg.in/yaml.v3"
)

// Dataset is the YAML fixture format for an in-memory graph.
type Dataset struct {
	Companies []types.Company `yaml:"companies"`
	Edges     []types.Edge    `yaml:"edges"`
}

// MemoryDriver serves a fixed dataset from memory. It backs tests, local
// development, and snapshot-restored directories. All state is immutable
// after construction, so it is trivially safe for concurrent use.
type MemoryDriver struct {
	companies map[string]types.Company
	order     []string
	byCompany map[string][]types.Edge // id -> edges touching it
}

// NewMemoryDriver builds a driver over the given dataset. Edges are
// indexed per endpoint with duplicates collapsed by max strength.
func NewMemoryDriver(ds Dataset) (*MemoryDriver, error) {
	m := &MemoryDriver{
		companies: make(map[string]types.Company, len(ds.Companies)),
		byCompany: make(map[string][]types.Edge),
	}
	for _, c := range ds.Companies {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid company %q: %w", c.ID, err)
		}
		if _, dup := m.companies[c.ID]; dup {
			return nil, fmt.Errorf("duplicate company id %q", c.ID)
		}
		m.companies[c.ID] = c
		m.order = append(m.order, c.ID)
	}
	sort.Strings(m.order)

	for _, e := range types.DedupeEdges(ds.Edges) {
		if _, ok := m.companies[e.SourceID]; !ok {
			return nil, fmt.Errorf("edge references unknown company %q", e.SourceID)
		}
		if _, ok := m.companies[e.TargetID]; !ok {
			return nil, fmt.Errorf("edge references unknown company %q", e.TargetID)
		}
		m.byCompany[e.SourceID] = append(m.byCompany[e.SourceID], e)
		if e.TargetID != e.SourceID {
			m.byCompany[e.TargetID] = append(m.byCompany[e.TargetID], e)
		}
	}
	// Canonical edge order, so drivers built from differently ordered
	// datasets (YAML fixtures, snapshots) behave identically.
	for _, edges := range m.byCompany {
		sort.Slice(edges, func(i, j int) bool {
			return edges[i].PairKey() < edges[j].PairKey()
		})
	}
	return m, nil
}

// LoadDataset reads a YAML fixture from disk.
func LoadDataset(path string) (Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read dataset: %w", err)
	}
	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return Dataset{}, fmt.Errorf("failed to parse dataset: %w", err)
	}
	return ds, nil
}

// NewMemoryDriverFromFile loads a YAML fixture and builds a driver.
func NewMemoryDriverFromFile(path string) (*MemoryDriver, error) {
	ds, err := LoadDataset(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryDriver(ds)
}

// GetCompany implements GraphDriver.
func (m *MemoryDriver) GetCompany(ctx context.Context, id string) (types.Company, error) {
	if err := ctx.Err(); err != nil {
		return types.Company{}, err
	}
	c, ok := m.companies[id]
	if !ok {
		return types.Company{}, fmt.Errorf("%w: %s", types.ErrCompanyNotFound, id)
	}
	return c, nil
}

// ListCompanies implements GraphDriver.
func (m *MemoryDriver) ListCompanies(ctx context.Context) ([]types.Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]types.Company, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.companies[id])
	}
	return out, nil
}

// Neighbors implements GraphDriver.
func (m *MemoryDriver) Neighbors(ctx context.Context, id string, edgeTypes []types.EdgeType) ([]types.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wanted := make(map[types.EdgeType]bool, len(edgeTypes))
	for _, et := range edgeTypes {
		wanted[et] = true
	}

	var edges []types.Edge
	for _, e := range m.byCompany[id] {
		if len(wanted) > 0 && !wanted[e.Type] {
			continue
		}
		e.Direction = types.DirectionIn
		if e.SourceID == id {
			e.Direction = types.DirectionOut
		}
		edges = append(edges, e)
	}
	return types.DedupeEdges(edges), nil
}

// EdgesBetween implements GraphDriver.
func (m *MemoryDriver) EdgesBetween(ctx context.Context, a, b string) ([]types.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var edges []types.Edge
	for _, e := range m.byCompany[a] {
		if e.Other(a) != b {
			continue
		}
		e.Direction = types.DirectionIn
		if e.SourceID == a {
			e.Direction = types.DirectionOut
		}
		edges = append(edges, e)
	}
	return types.DedupeEdges(edges), nil
}

// CommonNeighbors implements GraphDriver.
func (m *MemoryDriver) CommonNeighbors(ctx context.Context, a, b string, edgeType types.EdgeType) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fromA := make(map[string]bool)
	for _, e := range m.byCompany[a] {
		if e.Type == edgeType {
			fromA[e.Other(a)] = true
		}
	}
	var common []string
	for _, e := range m.byCompany[b] {
		other := e.Other(b)
		if e.Type == edgeType && fromA[other] && other != a && other != b {
			common = append(common, other)
			fromA[other] = false
		}
	}
	sort.Strings(common)
	return common, nil
}

// PartnerCounts implements GraphDriver.
func (m *MemoryDriver) PartnerCounts(ctx context.Context, ids []string) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(ids))
	for _, id := range ids {
		partners := make(map[string]bool)
		for _, e := range m.byCompany[id] {
			if e.Type == types.EdgePartnersWith {
				partners[e.Other(id)] = true
			}
		}
		if len(partners) > 0 {
			counts[id] = len(partners)
		}
	}
	return counts, nil
}

// Subgraph implements GraphDriver.
func (m *MemoryDriver) Subgraph(ctx context.Context, ids []string) ([]types.Edge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	inSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
	}
	var edges []types.Edge
	for _, id := range ids {
		for _, e := range m.byCompany[id] {
			if inSet[e.SourceID] && inSet[e.TargetID] {
				edges = append(edges, e)
			}
		}
	}
	return types.DedupeEdges(edges), nil
}

// Close implements GraphDriver. It is a no-op for the memory driver.
func (m *MemoryDriver) Close(ctx context.Context) error { return nil }
