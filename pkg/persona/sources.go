package persona

// SourceKind says where a scoring factor's raw value comes from, which
// determines how it is normalized.
type SourceKind string

const (
	// SourceQualitative is an LLM-enriched score on a 0-10 scale,
	// normalized by dividing by 10.
	SourceQualitative SourceKind = "qualitative"
	// SourceFinancial is a raw currency/ratio metric, min-max normalized
	// across the full company population.
	SourceFinancial SourceKind = "financial"
	// SourceGrowth is a growth signal, min-max normalized like financials.
	SourceGrowth SourceKind = "growth"
	// SourceGraph is computed from graph context during retrieval and
	// lives on the candidate rather than the company record.
	SourceGraph SourceKind = "graph"
	// SourceBinary maps a raw value through a threshold predicate.
	SourceBinary SourceKind = "binary"
)

// Source ties a factor name to the raw attribute it reads.
type Source struct {
	Kind      SourceKind
	Attribute string
}

// attributeSources maps every canonical factor name to its raw source.
// Factor names here are part of the public contract; downstream
// normalization keys into them verbatim.
var attributeSources = map[string]Source{
	// Qualitative scores (0-10 scale).
	"moat_durability":                   {SourceQualitative, "moat_durability"},
	"customer_switching_cost":           {SourceQualitative, "customer_switching_cost"},
	"revenue_predictability":            {SourceQualitative, "revenue_predictability"},
	"operational_improvement_potential": {SourceQualitative, "operational_improvement_potential"},
	"enterprise_readiness_score":        {SourceQualitative, "enterprise_readiness_score"},
	"developer_adoption_score":          {SourceQualitative, "developer_adoption_score"},
	"product_maturity_score":            {SourceQualitative, "product_maturity_score"},
	"market_timing_score":               {SourceQualitative, "market_timing_score"},

	// Financial metrics (raw units, min-max normalized).
	"operating_margin":        {SourceFinancial, "operating_margin"},
	"valuation_margin":        {SourceFinancial, "price_to_sales"},
	"low_debt":                {SourceFinancial, "debt_to_equity"},
	"small_enough_to_acquire": {SourceFinancial, "market_cap_b"},
	"free_cash_flow_positive": {SourceBinary, "free_cash_flow_b"},

	// Growth signals.
	"yoy_employee_growth":     {SourceGrowth, "yoy_employee_growth"},
	"github_stars_normalized": {SourceGrowth, "github_stars"},

	// Graph-derived signals.
	"partnership_fit":    {SourceGraph, "partnership_fit"},
	"competitive_threat": {SourceGraph, "competitive_threat"},
	"partnership_count":  {SourceGraph, "partnership_count"},

	// Derived inversions of qualitative scores.
	"product_maturity_inverse":        {SourceQualitative, "product_maturity_score"},
	"customer_switching_cost_inverse": {SourceQualitative, "customer_switching_cost"},
}

// SourceFor returns the raw source for a factor name.
func SourceFor(factor string) (Source, bool) {
	s, ok := attributeSources[factor]
	return s, ok
}

// RankableAttributes lists the company attributes attribute-ranking
// queries may sort by directly.
var RankableAttributes = []string{
	"moat_durability",
	"enterprise_readiness_score",
	"developer_adoption_score",
	"product_maturity_score",
	"customer_switching_cost",
	"revenue_predictability",
	"market_timing_score",
	"operational_improvement_potential",
	"operating_margin",
	"market_cap_b",
	"revenue_ttm_b",
	"yoy_employee_growth",
}
