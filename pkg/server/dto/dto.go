// Package dto defines the request and error envelopes of the HTTP API.
// Successful responses reuse the core types directly.
package dto

import (
	"errors"
	"strings"
)

// MaxQueryLength bounds the raw query text accepted by the API.
const MaxQueryLength = 500

// SearchRequest is the body of POST /api/v1/search.
type SearchRequest struct {
	Query       string `json:"query" binding:"required"`
	Persona     string `json:"persona,omitempty"`
	AllPersonas bool   `json:"all_personas,omitempty"`
}

// Validate performs validation on SearchRequest.
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query cannot be empty")
	}
	if len(r.Query) > MaxQueryLength {
		return errors.New("query exceeds maximum length")
	}
	return nil
}

// PersonaSummary is one scoring persona as listed by GET /api/v1/personas.
type PersonaSummary struct {
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name"`
	Description string             `json:"description"`
	Weights     map[string]float64 `json:"weights"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
