// Package query turns natural-language investor questions into typed
// intents. Classification is ordered pattern matching; entity resolution
// maps free-text company mentions onto directory ids.
package query

import (
	"regexp"
	"sort"
	"strings"

	"github.com/zeus1292/investorlens/pkg/persona"
	"github.com/zeus1292/investorlens/pkg/types"
)

// trailer matches the clause that ends a company mention, e.g.
// "...Snowflake through a PE lens".
const trailer = `(?:\s+through|\s+from|\s+in\s+a|\s*$)`

var competitorPatterns = []*regexp.Regexp{
	regexp.MustCompile(`competitors?\s+(?:to|of|for)\s+(.+?)` + trailer),
	regexp.MustCompile(`who\s+competes?\s+with\s+(.+?)` + trailer),
	regexp.MustCompile(`competition\s+(?:to|of|for)\s+(.+?)` + trailer),
	regexp.MustCompile(`rivals?\s+(?:to|of|for)\s+(.+?)` + trailer),
}

var comparePatterns = []*regexp.Regexp{
	regexp.MustCompile(`compare\s+(.+?)\s+(?:vs\.?|versus|and|with)\s+(.+?)` + trailer),
	regexp.MustCompile(`(.+?)\s+(?:vs\.?|versus)\s+(.+?)` + trailer),
}

var acquisitionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`acquisition\s+target\s+for\s+(.+?)\s+to\s+compete\s+with\s+(.+?)\s*$`),
	regexp.MustCompile(`(?:what|which|best)\s+.*?acqui\w+\s+.*?for\s+(.+?)\s+.*?(?:against|compete|rival)\s+.*?(.+?)\s*$`),
	regexp.MustCompile(`(.+?)\s+should\s+acqui\w+\s+to\s+compete\s+with\s+(.+?)\s*$`),
}

var rankingKeywords = []string{"which", "strongest", "best", "highest", "top", "most", "leading"}

var personaPatterns = []struct {
	id string
	re *regexp.Regexp
}{
	{persona.ValueInvestor, regexp.MustCompile(`value\s+invest`)},
	{persona.PEFirm, regexp.MustCompile(`\bpe\b|private\s+equity`)},
	{persona.GrowthVC, regexp.MustCompile(`\bvc\b|venture\s+capital|growth\b`)},
	{persona.StrategicAcquirer, regexp.MustCompile(`strateg|acqui[rs]`)},
	{persona.EnterpriseBuyer, regexp.MustCompile(`enterprise\s+buyer|buyer`)},
}

var lensWords = map[string]string{
	"pe":         persona.PEFirm,
	"private":    persona.PEFirm,
	"vc":         persona.GrowthVC,
	"growth":     persona.GrowthVC,
	"venture":    persona.GrowthVC,
	"value":      persona.ValueInvestor,
	"buyer":      persona.EnterpriseBuyer,
	"enterprise": persona.EnterpriseBuyer,
	"acquirer":   persona.StrategicAcquirer,
	"strategic":  persona.StrategicAcquirer,
}

var lensPattern = regexp.MustCompile(`(\w+)\s+lens`)

// attributeKeywords maps query phrasings to canonical attribute names.
// Longest phrase wins so "moat durability" beats "moat".
var attributeKeywords = map[string]string{
	"moat":                    "moat_durability",
	"moats":                   "moat_durability",
	"moat durability":         "moat_durability",
	"enterprise readiness":    "enterprise_readiness_score",
	"enterprise ready":        "enterprise_readiness_score",
	"developer adoption":      "developer_adoption_score",
	"developer traction":      "developer_adoption_score",
	"product maturity":        "product_maturity_score",
	"mature":                  "product_maturity_score",
	"switching cost":          "customer_switching_cost",
	"switching costs":         "customer_switching_cost",
	"lock-in":                 "customer_switching_cost",
	"revenue predictability":  "revenue_predictability",
	"predictable revenue":     "revenue_predictability",
	"recurring revenue":       "revenue_predictability",
	"market timing":           "market_timing_score",
	"operational improvement": "operational_improvement_potential",
	"margin":                  "operating_margin",
	"growth":                  "yoy_employee_growth",
	"revenue":                 "revenue_ttm_b",
	"market cap":              "market_cap_b",
}

var sortedAttributeKeys = sortKeysByLengthDesc(attributeKeywords)

// sectorKeywords narrows attribute rankings to a sector when the query
// names one.
var sectorKeywords = map[string]types.Sector{
	"data warehouse":   types.SectorDataWarehouse,
	"data warehouses":  types.SectorDataWarehouse,
	"lakehouse":        types.SectorLakehouse,
	"lakehouses":       types.SectorLakehouse,
	"vector database":  types.SectorVectorDatabase,
	"vector databases": types.SectorVectorDatabase,
	"vector db":        types.SectorVectorDatabase,
	"data integration": types.SectorDataIntegration,
	"etl":              types.SectorDataIntegration,
	"data quality":     types.SectorDataQuality,
	"data catalog":     types.SectorDataQuality,
	"olap":             types.SectorOLAP,
	"analytics db":     types.SectorOLAP,
	"oltp":             types.SectorOLTP,
	"ml platform":      types.SectorAIPlatform,
	"ai platform":      types.SectorAIPlatform,
	"ai/ml":            types.SectorAIPlatform,
}

var sortedSectorKeys = sortKeysByLengthDesc(sectorKeywords)

// Classifier classifies raw query text into one of the four intents.
type Classifier struct {
	resolver *Resolver
}

// NewClassifier wraps a resolver built over the company directory.
func NewClassifier(r *Resolver) *Classifier {
	return &Classifier{resolver: r}
}

// Classify parses raw text. Intent patterns are tried in a fixed order
// (competitors, compare, acquisition, attribute ranking); the first
// pattern that matches decides the intent, and a mention inside a
// matched pattern that fails to resolve surfaces EntityNotFoundError
// rather than falling through to a later rule. Text matching no rule at
// all yields UnparseableError.
func (c *Classifier) Classify(raw string) (types.ParsedQuery, error) {
	q := strings.ToLower(strings.TrimSpace(raw))
	lens := DetectPersona(raw)

	for _, pat := range competitorPatterns {
		m := pat.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		subject, err := c.resolver.Resolve(m[1])
		if err != nil {
			return types.ParsedQuery{}, err
		}
		return types.ParsedQuery{
			Type:    types.QueryFindCompetitors,
			RawText: raw,
			Subject: subject,
			Persona: lens,
		}, nil
	}

	for _, pat := range comparePatterns {
		m := pat.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		a, err := c.resolver.Resolve(m[1])
		if err != nil {
			return types.ParsedQuery{}, err
		}
		b, err := c.resolver.Resolve(m[2])
		if err != nil {
			return types.ParsedQuery{}, err
		}
		return types.ParsedQuery{
			Type:        types.QueryCompareTwo,
			RawText:     raw,
			Subject:     a,
			CompareWith: b,
			Persona:     lens,
		}, nil
	}

	for _, pat := range acquisitionPatterns {
		m := pat.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		acquirer, err := c.resolver.Resolve(m[1])
		if err != nil {
			return types.ParsedQuery{}, err
		}
		subject, err := c.resolver.Resolve(m[2])
		if err != nil {
			return types.ParsedQuery{}, err
		}
		p := lens
		if p == "" {
			p = persona.StrategicAcquirer
		}
		return types.ParsedQuery{
			Type:     types.QueryAcquisitionTarget,
			RawText:  raw,
			Acquirer: acquirer,
			Subject:  subject,
			Persona:  p,
		}, nil
	}

	attr := DetectAttribute(raw)
	if attr != "" && containsAny(q, rankingKeywords) {
		return types.ParsedQuery{
			Type:      types.QueryAttributeRanking,
			RawText:   raw,
			Attribute: attr,
			Sector:    DetectSector(raw),
			Persona:   lens,
		}, nil
	}

	// No intent phrasing matched; fall back to bare company mentions.
	if ids := c.resolver.ExtractAll(raw); len(ids) >= 2 {
		return types.ParsedQuery{
			Type:        types.QueryCompareTwo,
			RawText:     raw,
			Subject:     ids[0],
			CompareWith: ids[1],
			Persona:     lens,
		}, nil
	} else if len(ids) == 1 {
		return types.ParsedQuery{
			Type:    types.QueryFindCompetitors,
			RawText: raw,
			Subject: ids[0],
			Persona: lens,
		}, nil
	}

	if attr != "" {
		return types.ParsedQuery{
			Type:      types.QueryAttributeRanking,
			RawText:   raw,
			Attribute: attr,
			Sector:    DetectSector(raw),
			Persona:   lens,
		}, nil
	}

	return types.ParsedQuery{}, &types.UnparseableError{RawText: raw}
}

// DetectPersona finds a persona named in the query text, including
// "through a PE lens" style phrasings. Empty string means none.
func DetectPersona(raw string) string {
	q := strings.ToLower(raw)
	for _, pp := range personaPatterns {
		if pp.re.MatchString(q) {
			return pp.id
		}
	}
	if strings.Contains(q, "lens") {
		if m := lensPattern.FindStringSubmatch(q); m != nil {
			if id, ok := lensWords[m[1]]; ok {
				return id
			}
		}
	}
	return ""
}

// DetectAttribute finds the rankable attribute named in the query,
// preferring longer phrasings. Empty string means none.
func DetectAttribute(raw string) string {
	q := strings.ToLower(raw)
	for _, key := range sortedAttributeKeys {
		if strings.Contains(q, key) {
			return attributeKeywords[key]
		}
	}
	return ""
}

// DetectSector finds a sector filter named in the query.
func DetectSector(raw string) types.Sector {
	q := strings.ToLower(raw)
	for _, key := range sortedSectorKeys {
		if strings.Contains(q, key) {
			return sectorKeywords[key]
		}
	}
	return ""
}

func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func sortKeysByLengthDesc[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
