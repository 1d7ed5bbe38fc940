package types

import "errors"

// Validation errors
var (
	ErrEmptyID      = errors.New("company id cannot be empty")
	ErrEmptyName    = errors.New("company name cannot be empty")
	ErrEmptySubject = errors.New("query subject cannot be empty")
)

// Sector classifies a company within the covered universe.
type Sector string

const (
	SectorDataWarehouse   Sector = "data_warehouse"
	SectorLakehouse       Sector = "lakehouse"
	SectorAIPlatform      Sector = "ai_ml_platform"
	SectorDataIntegration Sector = "data_integration"
	SectorDataQuality     Sector = "data_quality_catalog"
	SectorVectorDatabase  Sector = "vector_database"
	SectorOLAP            Sector = "olap_analytics"
	SectorOLTP            Sector = "cloud_oltp"
)

// Company is a single company in the directory. Attributes holds both
// LLM-enriched qualitative scores (0-10 scale) and raw financial metrics,
// keyed by attribute name. A missing key means the value is absent for
// this company; the scoring layer substitutes a neutral prior.
//
// Companies are produced by the external ingestion/enrichment pipeline and
// are read-only inside the search core. The ID is a stable lowercase slug
// and never changes once assigned.
type Company struct {
	ID          string             `json:"company_id" yaml:"company_id" mapstructure:"company_id"`
	Name        string             `json:"name" yaml:"name" mapstructure:"name"`
	Sector      Sector             `json:"sector" yaml:"sector" mapstructure:"sector"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Aliases     []string           `json:"aliases,omitempty" yaml:"aliases,omitempty" mapstructure:"aliases"`
	Attributes  map[string]float64 `json:"attributes,omitempty" yaml:"attributes,omitempty" mapstructure:"attributes"`
}

// Validate checks if the Company has all required fields set.
func (c *Company) Validate() error {
	if c.ID == "" {
		return ErrEmptyID
	}
	if c.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Attribute returns the raw attribute value and whether it is present.
func (c *Company) Attribute(name string) (float64, bool) {
	v, ok := c.Attributes[name]
	return v, ok
}
