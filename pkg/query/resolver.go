package query

import (
	"sort"
	"strings"

	"github.com/zeus1292/investorlens/pkg/types"
)

// DefaultFuzzyThreshold is the minimum similarity a fuzzy match must clear
// before a mention resolves. Chosen so that one-character typos in short
// names ("snowflkae") resolve while unrelated words do not.
const DefaultFuzzyThreshold = 0.72

// builtinAliases maps common abbreviations and informal mentions to
// company ids. Hyperscaler mentions resolve to their data-platform proxy.
var builtinAliases = map[string]string{
	"snow":               "snowflake",
	"google bigquery":    "bigquery",
	"amazon redshift":    "redshift",
	"aws redshift":       "redshift",
	"synapse":            "azure_synapse",
	"c3":                 "c3ai",
	"c3 ai":              "c3ai",
	"data robot":         "datarobot",
	"h2o":                "h2o_ai",
	"h2o.ai":             "h2o_ai",
	"scale":              "scale_ai",
	"weights and biases": "wandb",
	"weights & biases":   "wandb",
	"w&b":                "wandb",
	"hugging face":       "huggingface",
	"dbt":                "dbt_labs",
	"mother duck":        "motherduck",
	"montecarlo":         "monte_carlo",
	"milvus":             "zilliz",
	"star rocks":         "starrocks",
	"google":             "bigquery",
	"amazon":             "redshift",
	"aws":                "redshift",
	"microsoft":          "azure_synapse",
}

// nameSuffixes are stripped from display names when building lookup keys.
var nameSuffixes = []string{" inc", " corporation", " technologies", " labs"}

// Resolver maps free-text company mentions to stable identifiers.
// It is built once from the company directory and is safe for concurrent
// reads.
type Resolver struct {
	lookup    map[string]string // normalized alias -> company id
	keys      []string          // deterministic iteration order, longest first
	threshold float64
}

// NewResolver builds a resolver over the given directory listing.
// A non-positive threshold falls back to DefaultFuzzyThreshold.
func NewResolver(companies []types.Company, threshold float64) *Resolver {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}

	lookup := make(map[string]string, len(companies)*3+len(builtinAliases))
	add := func(key, id string) {
		key = normalizeMention(key)
		if key == "" {
			return
		}
		// First writer wins so directory names beat builtin aliases.
		if _, exists := lookup[key]; !exists {
			lookup[key] = id
		}
	}

	for _, c := range companies {
		add(c.Name, c.ID)
		add(c.ID, c.ID)
		name := normalizeMention(c.Name)
		for _, suffix := range nameSuffixes {
			if strings.HasSuffix(name, suffix) {
				add(strings.TrimSpace(strings.TrimSuffix(name, suffix)), c.ID)
			}
		}
		for _, alias := range c.Aliases {
			add(alias, c.ID)
		}
	}
	for alias, id := range builtinAliases {
		add(alias, id)
	}

	keys := make([]string, 0, len(lookup))
	for k := range lookup {
		keys = append(keys, k)
	}
	// Longest first so substring extraction prefers the most specific
	// alias; lexicographic within a length for determinism.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	return &Resolver{lookup: lookup, keys: keys, threshold: threshold}
}

// Resolve maps a mention to a company id. Resolution order: exact
// case-insensitive match on name/id/alias, then fuzzy matching against
// every known key. The single best fuzzy match is accepted only if its
// similarity clears the threshold; ties prefer the shorter key, then
// lexicographic order.
func (r *Resolver) Resolve(mention string) (string, error) {
	key := normalizeMention(mention)
	if key == "" {
		return "", &types.EntityNotFoundError{Mention: mention}
	}
	if id, ok := r.lookup[key]; ok {
		return id, nil
	}

	bestKey := ""
	bestScore := 0.0
	for _, candidate := range r.keys {
		score := similarity(key, candidate)
		if score > bestScore {
			bestScore = score
			bestKey = candidate
			continue
		}
		if score == bestScore && bestKey != "" {
			if len(candidate) < len(bestKey) || (len(candidate) == len(bestKey) && candidate < bestKey) {
				bestKey = candidate
			}
		}
	}

	if bestKey == "" || bestScore < r.threshold {
		return "", &types.EntityNotFoundError{Mention: mention}
	}
	return r.lookup[bestKey], nil
}

// ExtractAll scans raw text for company mentions, matching longest
// aliases first, and returns the distinct ids ordered by where they
// appear in the text. Aliases shorter than three characters are skipped
// to avoid spurious hits.
func (r *Resolver) ExtractAll(text string) []string {
	q := normalizeMention(text)
	type hit struct {
		id  string
		pos int
	}
	var hits []hit
	seen := make(map[string]bool)
	for _, alias := range r.keys {
		if len(alias) < 3 {
			continue
		}
		pos := indexWord(q, alias)
		if pos < 0 {
			continue
		}
		id := r.lookup[alias]
		if !seen[id] {
			seen[id] = true
			hits = append(hits, hit{id: id, pos: pos})
		}
		q = strings.Replace(q, alias, strings.Repeat(" ", len(alias)), 1)
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	found := make([]string, 0, len(hits))
	for _, h := range hits {
		found = append(found, h.id)
	}
	return found
}

func normalizeMention(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRight(s, ".?!")
	return strings.Join(strings.Fields(s), " ")
}

// indexWord returns the first index where alias occurs in text on word
// boundaries, or -1.
func indexWord(text, alias string) int {
	idx := 0
	for {
		i := strings.Index(text[idx:], alias)
		if i < 0 {
			return -1
		}
		start := idx + i
		end := start + len(alias)
		leftOK := start == 0 || !isWordByte(text[start-1])
		rightOK := end == len(text) || !isWordByte(text[end])
		if leftOK && rightOK {
			return start
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

// similarity blends containment with normalized edit distance so both
// "clickhouse inc" vs "clickhouse" and one-character typos score high.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longer, shorter := a, b
	if len(shorter) > len(longer) {
		longer, shorter = shorter, longer
	}
	contain := 0.0
	if len(shorter) >= 3 && strings.Contains(longer, shorter) {
		contain = float64(len(shorter)) / float64(len(longer))
	}
	maxLen := len(longer)
	if maxLen == 0 {
		return 0
	}
	edit := 1.0 - float64(levenshtein(a, b))/float64(maxLen)
	if contain > edit {
		return contain
	}
	return edit
}

// levenshtein computes edit distance with a two-row matrix.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
