package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeus1292/investorlens/pkg/driver"
	"github.com/zeus1292/investorlens/pkg/types"
)

func newTestRetriever(t *testing.T) *Retriever {
	t.Helper()
	d, err := driver.NewMemoryDriverFromFile("../driver/testdata/dataset.yaml")
	require.NoError(t, err)
	return New(d, nil)
}

func candidateIDs(set *types.CandidateSet) []string {
	ids := make([]string, 0, len(set.Candidates))
	for _, c := range set.Candidates {
		ids = append(ids, c.Company.ID)
	}
	return ids
}

func findCandidate(t *testing.T, set *types.CandidateSet, id string) *types.Candidate {
	t.Helper()
	for i := range set.Candidates {
		if set.Candidates[i].Company.ID == id {
			return &set.Candidates[i]
		}
	}
	t.Fatalf("candidate %s not in set %v", id, candidateIDs(set))
	return nil
}

func TestCompetitorsExcludesThemeOnlyNeighbors(t *testing.T) {
	r := newTestRetriever(t)
	set, err := r.Competitors(context.Background(), "snowflake")
	require.NoError(t, err)

	ids := candidateIDs(set)
	assert.ElementsMatch(t, []string{"bigquery", "clickhouse", "databricks", "firebolt"}, ids)
	assert.NotContains(t, ids, "pinecone", "theme-only overlap is not competition")
}

func TestCompetitorsCapturesGraphContext(t *testing.T) {
	r := newTestRetriever(t)
	set, err := r.Competitors(context.Background(), "snowflake")
	require.NoError(t, err)

	databricks := findCandidate(t, set, "databricks")
	assert.Equal(t, 0.9, databricks.CompetitionStrength, "strongest direction of the rivalry wins")
	assert.True(t, databricks.EdgeTypes()[types.EdgeTargetsSameSegment])
	assert.Equal(t, 1, databricks.PartnershipCount)

	clickhouse := findCandidate(t, set, "clickhouse")
	assert.Zero(t, clickhouse.CompetitionStrength)
	assert.True(t, clickhouse.EdgeTypes()[types.EdgeDisrupts])

	// Firebolt competes weakly and shares a theme; the theme edge stays as
	// context because a real competitive edge qualifies it.
	firebolt := findCandidate(t, set, "firebolt")
	assert.Equal(t, 0.4, firebolt.CompetitionStrength)
	assert.True(t, firebolt.EdgeTypes()[types.EdgeSharesInvestmentTheme])
}

func TestCompetitorsUnknownSubject(t *testing.T) {
	r := newTestRetriever(t)
	_, err := r.Competitors(context.Background(), "ghost")
	assert.ErrorIs(t, err, types.ErrCompanyNotFound)
}

func TestCompare(t *testing.T) {
	r := newTestRetriever(t)
	set, err := r.Compare(context.Background(), "snowflake", "databricks")
	require.NoError(t, err)

	require.NotNil(t, set.Compare)
	cmp := set.Compare
	assert.Equal(t, "snowflake", cmp.SubjectA.Company.ID)
	assert.Equal(t, "databricks", cmp.SubjectB.Company.ID)
	assert.Len(t, cmp.DirectEdges, 2)
	assert.Equal(t, []string{"bigquery"}, cmp.CommonCompetitors)
	assert.True(t, cmp.SharedSegments)
	assert.False(t, cmp.SharedThemes)

	// Common competitors are full candidates, not just ids.
	assert.Equal(t, []string{"snowflake", "databricks", "bigquery"}, candidateIDs(set))
	assert.Equal(t, 0.9, set.Candidates[0].CompetitionStrength)

	bigquery := findCandidate(t, set, "bigquery")
	assert.Equal(t, 0.8, bigquery.CompetitionStrength, "strongest competes edge to either subject")
	assert.True(t, bigquery.EdgeTypes()[types.EdgeCompetesWith])
	assert.Equal(t, 1, bigquery.PartnershipCount)

	require.Len(t, cmp.CommonProfiles, 1)
	assert.Equal(t, "bigquery", cmp.CommonProfiles[0].Company.ID)
	assert.NotEmpty(t, cmp.CommonProfiles[0].Company.Attributes)
}

func TestAcquisitionTargetsExcludesAcquirerRivals(t *testing.T) {
	r := newTestRetriever(t)
	set, err := r.AcquisitionTargets(context.Background(), "bigquery", "snowflake")
	require.NoError(t, err)

	ids := candidateIDs(set)
	assert.NotContains(t, ids, "bigquery", "acquirer cannot buy itself")
	assert.NotContains(t, ids, "snowflake", "the threat is not a target")
	assert.NotContains(t, ids, "databricks", "existing rival of the acquirer")
	assert.NotContains(t, ids, "clickhouse", "existing rival of the acquirer")
	assert.Equal(t, []string{"firebolt"}, ids)

	firebolt := findCandidate(t, set, "firebolt")
	assert.Equal(t, 0.4, firebolt.CompetitiveThreat)
	assert.Equal(t, 0.6, firebolt.PartnershipFit, "bigquery already partners with firebolt")
	assert.True(t, firebolt.EdgeTypes()[types.EdgePartnersWith])
}

func TestAcquisitionTargetsPartnershipFit(t *testing.T) {
	r := newTestRetriever(t)
	// Fivetran competes with nobody, so nothing is excluded as a rival.
	set, err := r.AcquisitionTargets(context.Background(), "fivetran", "snowflake")
	require.NoError(t, err)

	ids := candidateIDs(set)
	assert.ElementsMatch(t, []string{"bigquery", "clickhouse", "databricks", "firebolt"}, ids)

	databricks := findCandidate(t, set, "databricks")
	assert.Equal(t, 0.9, databricks.CompetitiveThreat)
	assert.Equal(t, 0.7, databricks.PartnershipFit)

	clickhouse := findCandidate(t, set, "clickhouse")
	assert.Equal(t, 0.7, clickhouse.CompetitiveThreat, "disruption counts as threat")
	assert.Zero(t, clickhouse.PartnershipFit)
}

func TestAttributeRankingOrdersByRawValue(t *testing.T) {
	r := newTestRetriever(t)
	set, err := r.AttributeRanking(context.Background(), "moat_durability", "")
	require.NoError(t, err)

	want := []string{"bigquery", "snowflake", "databricks", "fivetran", "clickhouse", "pinecone", "firebolt"}
	assert.Equal(t, want, candidateIDs(set))
}

func TestAttributeRankingSectorFilter(t *testing.T) {
	r := newTestRetriever(t)
	set, err := r.AttributeRanking(context.Background(), "moat_durability", types.SectorDataWarehouse)
	require.NoError(t, err)
	assert.Equal(t, []string{"bigquery", "snowflake", "firebolt"}, candidateIDs(set))
}

func TestAttributeRankingUnknownAttributeFallsBack(t *testing.T) {
	r := newTestRetriever(t)
	set, err := r.AttributeRanking(context.Background(), "share_price", "")
	require.NoError(t, err)
	require.NotEmpty(t, set.Candidates)
	assert.Equal(t, "bigquery", set.Candidates[0].Company.ID, "falls back to moat durability")
}

func TestAttributeRankingHonorsLimit(t *testing.T) {
	r := newTestRetriever(t)
	r.AttributeLimit = 3
	set, err := r.AttributeRanking(context.Background(), "moat_durability", "")
	require.NoError(t, err)
	assert.Len(t, set.Candidates, 3)
}

func TestGraphPayload(t *testing.T) {
	r := newTestRetriever(t)
	ctx := context.Background()
	set, err := r.Competitors(ctx, "snowflake")
	require.NoError(t, err)

	payload, err := r.GraphPayload(ctx, set, "snowflake")
	require.NoError(t, err)

	require.Len(t, payload.Nodes, 5, "subject plus four candidates")
	inGraph := make(map[string]bool)
	centers := 0
	for _, n := range payload.Nodes {
		inGraph[n.ID] = true
		if n.IsCenter {
			centers++
			assert.Equal(t, "snowflake", n.ID)
		}
		assert.NotEmpty(t, n.Label)
	}
	assert.Equal(t, 1, centers)

	require.NotEmpty(t, payload.Edges)
	for _, e := range payload.Edges {
		assert.True(t, inGraph[e.SourceID], "edge source %s outside payload", e.SourceID)
		assert.True(t, inGraph[e.TargetID], "edge target %s outside payload", e.TargetID)
	}
}

func TestRetrieveDispatch(t *testing.T) {
	r := newTestRetriever(t)
	ctx := context.Background()

	set, err := r.Retrieve(ctx, types.ParsedQuery{Type: types.QueryFindCompetitors, Subject: "snowflake"})
	require.NoError(t, err)
	assert.Equal(t, []string{"snowflake"}, set.Subjects)

	set, err = r.Retrieve(ctx, types.ParsedQuery{Type: types.QueryAttributeRanking, Attribute: "moat_durability"})
	require.NoError(t, err)
	assert.NotEmpty(t, set.Candidates)

	_, err = r.Retrieve(ctx, types.ParsedQuery{Type: types.QueryCompareTwo, Subject: "snowflake"})
	assert.ErrorIs(t, err, types.ErrEmptySubject)
}
