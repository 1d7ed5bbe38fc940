package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeus1292/investorlens/pkg/types"
)

func loadTestDriver(t *testing.T) *MemoryDriver {
	t.Helper()
	d, err := NewMemoryDriverFromFile("testdata/dataset.yaml")
	require.NoError(t, err)
	return d
}

func TestLoadDataset(t *testing.T) {
	ds, err := LoadDataset("testdata/dataset.yaml")
	require.NoError(t, err)
	assert.Len(t, ds.Companies, 7)
	assert.NotEmpty(t, ds.Edges)
}

func TestMemoryDriverGetCompany(t *testing.T) {
	d := loadTestDriver(t)
	ctx := context.Background()

	c, err := d.GetCompany(ctx, "snowflake")
	require.NoError(t, err)
	assert.Equal(t, "Snowflake", c.Name)
	assert.Equal(t, types.SectorDataWarehouse, c.Sector)

	moat, ok := c.Attribute("moat_durability")
	require.True(t, ok)
	assert.Equal(t, 8.0, moat)

	_, err = d.GetCompany(ctx, "nonexistent")
	assert.ErrorIs(t, err, types.ErrCompanyNotFound)
}

func TestMemoryDriverListCompaniesOrdered(t *testing.T) {
	d := loadTestDriver(t)
	companies, err := d.ListCompanies(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 7)
	for i := 1; i < len(companies); i++ {
		assert.Less(t, companies[i-1].ID, companies[i].ID, "directory must be ordered by id")
	}
}

func TestMemoryDriverNeighborsDedupes(t *testing.T) {
	d := loadTestDriver(t)
	edges, err := d.Neighbors(context.Background(), "snowflake", []types.EdgeType{types.EdgeCompetesWith})
	require.NoError(t, err)

	// Both directions of the snowflake-databricks rivalry exist in the
	// fixture; only the stronger one must survive.
	var databricks *types.Edge
	for i := range edges {
		assert.Equal(t, types.EdgeCompetesWith, edges[i].Type)
		if edges[i].Other("snowflake") == "databricks" {
			require.Nil(t, databricks, "duplicate snowflake-databricks edge survived dedupe")
			databricks = &edges[i]
		}
	}
	require.NotNil(t, databricks)
	assert.Equal(t, 0.9, databricks.Strength)
}

func TestMemoryDriverNeighborsTypeFilter(t *testing.T) {
	d := loadTestDriver(t)
	ctx := context.Background()

	partners, err := d.Neighbors(ctx, "snowflake", []types.EdgeType{types.EdgePartnersWith})
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, "fivetran", partners[0].Other("snowflake"))

	all, err := d.Neighbors(ctx, "snowflake", nil)
	require.NoError(t, err)
	assert.Greater(t, len(all), len(partners), "unfiltered neighbors must include every edge type")
}

func TestMemoryDriverNeighborsDirection(t *testing.T) {
	d := loadTestDriver(t)
	edges, err := d.Neighbors(context.Background(), "snowflake", []types.EdgeType{types.EdgeDisrupts})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "clickhouse", edges[0].SourceID)
	assert.Equal(t, types.DirectionIn, edges[0].Direction, "snowflake is the disrupted party")
}

func TestMemoryDriverEdgesBetween(t *testing.T) {
	d := loadTestDriver(t)
	edges, err := d.EdgesBetween(context.Background(), "snowflake", "databricks")
	require.NoError(t, err)
	require.Len(t, edges, 2)

	byType := make(map[types.EdgeType]types.Edge)
	for _, e := range edges {
		byType[e.Type] = e
	}
	assert.Equal(t, 0.9, byType[types.EdgeCompetesWith].Strength)
	assert.Contains(t, byType, types.EdgeTargetsSameSegment)
}

func TestMemoryDriverCommonNeighbors(t *testing.T) {
	d := loadTestDriver(t)
	common, err := d.CommonNeighbors(context.Background(), "databricks", "bigquery", types.EdgeCompetesWith)
	require.NoError(t, err)
	assert.Equal(t, []string{"snowflake"}, common)
}

func TestMemoryDriverPartnerCounts(t *testing.T) {
	d := loadTestDriver(t)
	counts, err := d.PartnerCounts(context.Background(), []string{"snowflake", "databricks", "clickhouse"})
	require.NoError(t, err)
	assert.Equal(t, 1, counts["snowflake"])
	assert.Equal(t, 1, counts["databricks"])
	assert.NotContains(t, counts, "clickhouse")
}

func TestMemoryDriverSubgraph(t *testing.T) {
	d := loadTestDriver(t)
	edges, err := d.Subgraph(context.Background(), []string{"snowflake", "databricks", "fivetran"})
	require.NoError(t, err)
	assert.Len(t, edges, 4)
	for _, e := range edges {
		assert.Contains(t, []string{"snowflake", "databricks", "fivetran"}, e.SourceID)
		assert.Contains(t, []string{"snowflake", "databricks", "fivetran"}, e.TargetID)
	}
}

func TestMemoryDriverRejectsDanglingEdges(t *testing.T) {
	_, err := NewMemoryDriver(Dataset{
		Companies: []types.Company{{ID: "a", Name: "A"}},
		Edges:     []types.Edge{{SourceID: "a", TargetID: "ghost", Type: types.EdgeCompetesWith}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown company")
}

// failingDriver always errors, for breaker tests.
type failingDriver struct {
	err   error
	calls int
}

func (f *failingDriver) GetCompany(ctx context.Context, id string) (types.Company, error) {
	f.calls++
	return types.Company{}, f.err
}
func (f *failingDriver) ListCompanies(ctx context.Context) ([]types.Company, error) {
	f.calls++
	return nil, f.err
}
func (f *failingDriver) Neighbors(ctx context.Context, id string, edgeTypes []types.EdgeType) ([]types.Edge, error) {
	f.calls++
	return nil, f.err
}
func (f *failingDriver) EdgesBetween(ctx context.Context, a, b string) ([]types.Edge, error) {
	f.calls++
	return nil, f.err
}
func (f *failingDriver) CommonNeighbors(ctx context.Context, a, b string, et types.EdgeType) ([]string, error) {
	f.calls++
	return nil, f.err
}
func (f *failingDriver) PartnerCounts(ctx context.Context, ids []string) (map[string]int, error) {
	f.calls++
	return nil, f.err
}
func (f *failingDriver) Subgraph(ctx context.Context, ids []string) ([]types.Edge, error) {
	f.calls++
	return nil, f.err
}
func (f *failingDriver) Close(ctx context.Context) error { return nil }

func TestBreakerWrapsFailuresAsUnavailable(t *testing.T) {
	inner := &failingDriver{err: errors.New("connection refused")}
	b := NewBreakerDriver(inner, BreakerConfig{Timeout: time.Minute}, nil)

	_, err := b.Neighbors(context.Background(), "snowflake", nil)
	var unavailable *types.GraphUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "neighbors", unavailable.Op)
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	inner := &failingDriver{err: errors.New("connection refused")}
	b := NewBreakerDriver(inner, BreakerConfig{Timeout: time.Minute}, nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := b.ListCompanies(ctx)
		var unavailable *types.GraphUnavailableError
		require.ErrorAs(t, err, &unavailable)
	}
	// Once open, calls short-circuit without reaching the store.
	assert.Less(t, inner.calls, 10)
}

func TestBreakerPassesThroughNotFound(t *testing.T) {
	inner := &failingDriver{err: types.ErrCompanyNotFound}
	b := NewBreakerDriver(inner, BreakerConfig{Timeout: time.Minute}, nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := b.GetCompany(ctx, "ghost")
		require.ErrorIs(t, err, types.ErrCompanyNotFound)
		var unavailable *types.GraphUnavailableError
		assert.False(t, errors.As(err, &unavailable), "not-found must not read as outage")
	}
	assert.Equal(t, 10, inner.calls, "misses must never trip the breaker")
}
