package types

// QueryType tags a parsed query with its intent. Exactly one of the four
// types applies to every query that classifies successfully; the tag
// determines which of the optional ParsedQuery fields are populated.
type QueryType string

const (
	QueryFindCompetitors   QueryType = "find_competitors"
	QueryCompareTwo        QueryType = "compare_two"
	QueryAcquisitionTarget QueryType = "find_acquisition_target"
	QueryAttributeRanking  QueryType = "attribute_ranking"
)

// ParsedQuery is the structured form of a raw query. It lives for one
// request and is never persisted.
//
// Field population by type:
//
//	find_competitors        Subject
//	compare_two             Subject, CompareWith
//	find_acquisition_target Acquirer, Subject (the competitor to counter)
//	attribute_ranking       Attribute, optionally Sector
//
// Persona is set only when the query text itself names a viewpoint
// ("through a PE lens"); it overrides the request persona downstream.
type ParsedQuery struct {
	Type        QueryType `json:"query_type"`
	RawText     string    `json:"raw_query"`
	Subject     string    `json:"subject,omitempty"`
	CompareWith string    `json:"compare_with,omitempty"`
	Acquirer    string    `json:"acquirer,omitempty"`
	Attribute   string    `json:"attribute,omitempty"`
	Sector      Sector    `json:"sector,omitempty"`
	Persona     string    `json:"persona,omitempty"`
}

// Validate checks that the fields required by the query type are set.
func (q *ParsedQuery) Validate() error {
	switch q.Type {
	case QueryFindCompetitors:
		if q.Subject == "" {
			return ErrEmptySubject
		}
	case QueryCompareTwo:
		if q.Subject == "" || q.CompareWith == "" {
			return ErrEmptySubject
		}
	case QueryAcquisitionTarget:
		if q.Acquirer == "" || q.Subject == "" {
			return ErrEmptySubject
		}
	}
	return nil
}
