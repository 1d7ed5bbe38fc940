package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeus1292/investorlens/pkg/persona"
	"github.com/zeus1292/investorlens/pkg/types"
)

// fakeService returns canned outcomes keyed on the raw query text.
type fakeService struct {
	companies []types.Company
}

func (f *fakeService) Search(_ context.Context, rawQuery, personaID string, _ bool) (*types.SearchResponse, error) {
	switch {
	case strings.Contains(rawQuery, "weather"):
		return nil, &types.UnparseableError{RawText: rawQuery}
	case strings.Contains(rawQuery, "Zzyzx"):
		return nil, &types.EntityNotFoundError{Mention: "Zzyzx Corp"}
	case strings.Contains(rawQuery, "outage"):
		return nil, &types.GraphUnavailableError{Op: "neighbors"}
	case personaID == "day_trader":
		return nil, types.ErrUnknownPersona
	}
	return &types.SearchResponse{
		Query:   types.ParsedQuery{Type: types.QueryFindCompetitors, RawText: rawQuery, Subject: "snowflake"},
		Persona: persona.ValueInvestor,
		Results: []types.ScoredResult{{Rank: 1, CompanyID: "databricks", Name: "Databricks", CompositeScore: 0.81}},
		Metadata: types.SearchMetadata{
			RequestID:      "req-1",
			CandidateCount: 1,
		},
	}, nil
}

func (f *fakeService) Personas() []persona.Profile { return persona.NewStore().List() }

func (f *fakeService) Companies() []types.Company { return f.companies }

func (f *fakeService) GetCompany(_ context.Context, id string) (types.Company, error) {
	for _, c := range f.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return types.Company{}, types.ErrCompanyNotFound
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := &fakeService{companies: []types.Company{{ID: "snowflake", Name: "Snowflake"}}}
	h := NewSearchHandler(svc)
	health := NewHealthHandler(svc)

	r := gin.New()
	r.GET("/health", health.HealthCheck)
	r.GET("/ready", health.ReadinessCheck)
	r.POST("/api/v1/search", h.Search)
	r.GET("/api/v1/personas", h.Personas)
	r.GET("/api/v1/companies", h.Companies)
	r.GET("/api/v1/companies/:id", h.GetCompany)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSearchEndpoint(t *testing.T) {
	r := testRouter()
	w := doJSON(t, r, http.MethodPost, "/api/v1/search", `{"query":"Who competes with Snowflake?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp types.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, types.QueryFindCompetitors, resp.Query.Type)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "databricks", resp.Results[0].CompanyID)
}

func TestSearchEndpointErrorMapping(t *testing.T) {
	r := testRouter()
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing query", `{}`, http.StatusBadRequest, "invalid_request"},
		{"blank query", `{"query":"   "}`, http.StatusBadRequest, "invalid_request"},
		{"unparseable", `{"query":"what is the weather"}`, http.StatusBadRequest, "unparseable_query"},
		{"unknown company", `{"query":"Who competes with Zzyzx Corp?"}`, http.StatusNotFound, "entity_not_found"},
		{"unknown persona", `{"query":"Who competes with Snowflake?","persona":"day_trader"}`, http.StatusBadRequest, "unknown_persona"},
		{"graph down", `{"query":"outage"}`, http.StatusServiceUnavailable, "graph_unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/search", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			var errResp struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
			assert.Equal(t, tt.wantCode, errResp.Error)
		})
	}
}

func TestPersonasEndpoint(t *testing.T) {
	r := testRouter()
	w := doJSON(t, r, http.MethodGet, "/api/v1/personas", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Personas []struct {
			Name        string             `json:"name"`
			DisplayName string             `json:"display_name"`
			Weights     map[string]float64 `json:"weights"`
		} `json:"personas"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Personas, 5)
	assert.Equal(t, persona.ValueInvestor, resp.Personas[0].Name)
	assert.NotEmpty(t, resp.Personas[0].Weights)
}

func TestCompanyEndpoints(t *testing.T) {
	r := testRouter()

	w := doJSON(t, r, http.MethodGet, "/api/v1/companies", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/companies/snowflake", "")
	require.Equal(t, http.StatusOK, w.Code)
	var company types.Company
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &company))
	assert.Equal(t, "Snowflake", company.Name)

	w = doJSON(t, r, http.MethodGet, "/api/v1/companies/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	r := testRouter()
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/ready", "").Code)
}
