package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zeus1292/investorlens/pkg/persona"
	"github.com/zeus1292/investorlens/pkg/server/dto"
	"github.com/zeus1292/investorlens/pkg/types"
)

// SearchService is the slice of the core client the HTTP layer needs.
type SearchService interface {
	Search(ctx context.Context, rawQuery, personaID string, allPersonas bool) (*types.SearchResponse, error)
	Personas() []persona.Profile
	Companies() []types.Company
	GetCompany(ctx context.Context, id string) (types.Company, error)
}

// SearchHandler handles search and directory requests
type SearchHandler struct {
	lens SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(lens SearchService) *SearchHandler {
	return &SearchHandler{lens: lens}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	resp, err := h.lens.Search(c.Request.Context(), req.Query, req.Persona, req.AllPersonas)
	if err != nil {
		status, code := classifyError(err)
		writeError(c, status, code, err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Personas handles GET /api/v1/personas
func (h *SearchHandler) Personas(c *gin.Context) {
	profiles := h.lens.Personas()
	out := make([]dto.PersonaSummary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, dto.PersonaSummary{
			Name:        p.Name,
			DisplayName: p.DisplayName,
			Description: p.Description,
			Weights:     p.Weights,
		})
	}
	c.JSON(http.StatusOK, gin.H{"personas": out})
}

// Companies handles GET /api/v1/companies
func (h *SearchHandler) Companies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"companies": h.lens.Companies()})
}

// GetCompany handles GET /api/v1/companies/:id
func (h *SearchHandler) GetCompany(c *gin.Context) {
	company, err := h.lens.GetCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		status, code := classifyError(err)
		writeError(c, status, code, err.Error())
		return
	}
	c.JSON(http.StatusOK, company)
}

// classifyError maps core errors onto HTTP status and a stable error code.
func classifyError(err error) (int, string) {
	var unparseable *types.UnparseableError
	var notFound *types.EntityNotFoundError
	var unavailable *types.GraphUnavailableError
	switch {
	case errors.As(err, &unparseable):
		return http.StatusBadRequest, "unparseable_query"
	case errors.As(err, &notFound):
		return http.StatusNotFound, "entity_not_found"
	case errors.Is(err, types.ErrUnknownPersona):
		return http.StatusBadRequest, "unknown_persona"
	case errors.Is(err, types.ErrCompanyNotFound):
		return http.StatusNotFound, "company_not_found"
	case errors.As(err, &unavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "graph_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.ErrorResponse{
		Error:   code,
		Message: message,
		Code:    status,
	})
}
