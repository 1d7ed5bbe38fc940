package investorlens

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeus1292/investorlens/pkg/driver"
	"github.com/zeus1292/investorlens/pkg/persona"
	"github.com/zeus1292/investorlens/pkg/query"
	"github.com/zeus1292/investorlens/pkg/ranking"
	"github.com/zeus1292/investorlens/pkg/retrieval"
	"github.com/zeus1292/investorlens/pkg/scoring"
	"github.com/zeus1292/investorlens/pkg/snapshot"
	"github.com/zeus1292/investorlens/pkg/telemetry"
	"github.com/zeus1292/investorlens/pkg/types"
)

// Default tuning for the search pipeline. Each has a matching Option.
const (
	DefaultTraversalTimeout = 3 * time.Second
	DefaultRetryBackoff     = 250 * time.Millisecond
	DefaultTopN             = 10
)

type options struct {
	logger           *slog.Logger
	recorder         *telemetry.Recorder
	fuzzyThreshold   float64
	traversalTimeout time.Duration
	retryBackoff     time.Duration
	topN             int
	attributeLimit   int
}

// Option customizes a Client at construction time.
type Option func(*options)

// WithLogger sets the structured logger used by the pipeline.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.logger = log }
}

// WithRecorder attaches a telemetry recorder. Searches record one event
// each; a nil recorder records nothing.
func WithRecorder(rec *telemetry.Recorder) Option {
	return func(o *options) { o.recorder = rec }
}

// WithFuzzyThreshold overrides the minimum similarity for a company
// mention to resolve.
func WithFuzzyThreshold(threshold float64) Option {
	return func(o *options) { o.fuzzyThreshold = threshold }
}

// WithTraversalTimeout bounds a single graph retrieval attempt.
func WithTraversalTimeout(d time.Duration) Option {
	return func(o *options) { o.traversalTimeout = d }
}

// WithRetryBackoff sets the pause before the single retry taken after a
// graph failure.
func WithRetryBackoff(d time.Duration) Option {
	return func(o *options) { o.retryBackoff = d }
}

// WithTopN caps how many ranked results each persona returns.
func WithTopN(n int) Option {
	return func(o *options) { o.topN = n }
}

// WithAttributeLimit caps how many companies an attribute ranking
// considers.
func WithAttributeLimit(n int) Option {
	return func(o *options) { o.attributeLimit = n }
}

// Client wires the query, retrieval, scoring, and ranking layers into
// one search pipeline over a graph driver.
type Client struct {
	driver     driver.GraphDriver
	personas   *persona.Store
	classifier *query.Classifier
	retriever  *retrieval.Retriever
	normalizer *scoring.Normalizer
	recorder   *telemetry.Recorder
	log        *slog.Logger
	opts       options

	// population is the full company directory at construction time,
	// the normalization base for financial and growth factors.
	population []types.Company
}

// New builds a Client over the given driver. It loads the company
// directory once, so name resolution and score normalization work
// against a stable population for the client's lifetime.
func New(ctx context.Context, d driver.GraphDriver, opts ...Option) (*Client, error) {
	o := options{
		fuzzyThreshold:   query.DefaultFuzzyThreshold,
		traversalTimeout: DefaultTraversalTimeout,
		retryBackoff:     DefaultRetryBackoff,
		topN:             DefaultTopN,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	population, err := d.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}

	retriever := retrieval.New(d, o.logger)
	if o.attributeLimit > 0 {
		retriever.AttributeLimit = o.attributeLimit
	}

	return &Client{
		driver:     d,
		personas:   persona.NewStore(),
		classifier: query.NewClassifier(query.NewResolver(population, o.fuzzyThreshold)),
		retriever:  retriever,
		normalizer: scoring.NewNormalizer(population),
		recorder:   o.recorder,
		log:        o.logger,
		opts:       o,
		population: population,
	}, nil
}

// Search runs the full pipeline for one natural-language query.
//
// personaID selects the scoring lens, with value_investor as the
// fallback. A persona embedded in the query itself always wins: a lens
// phrase like "through a PE lens", or the strategic_acquirer default
// that acquisition queries carry. A non-empty personaID must still name
// one of the five profiles. With allPersonas set, the response
// additionally carries rankings under every persona, computed from the
// same candidate set.
func (c *Client) Search(ctx context.Context, rawQuery, personaID string, allPersonas bool) (*types.SearchResponse, error) {
	start := time.Now()
	requestID := uuid.New().String()
	ctx = telemetry.WithRequestID(ctx, requestID)
	log := c.log.With("request_id", requestID)

	parsed, err := c.classifier.Classify(rawQuery)
	if err != nil {
		log.Warn("query not understood", "query", rawQuery, "error", err)
		c.recordEvent(requestID, rawQuery, parsed, "", start, nil, false, err)
		return nil, err
	}

	// An unknown request persona is rejected even when a persona in the
	// query itself would decide the ranking.
	if personaID != "" {
		if _, err := c.personas.WeightsFor(personaID); err != nil {
			c.recordEvent(requestID, rawQuery, parsed, personaID, start, nil, false, err)
			return nil, err
		}
	}
	active := c.resolvePersona(parsed, personaID)
	profile, err := c.personas.WeightsFor(active)
	if err != nil {
		c.recordEvent(requestID, rawQuery, parsed, active, start, nil, false, err)
		return nil, err
	}
	log.Info("query classified", "type", parsed.Type, "persona", active)

	set, retried, err := c.retrieve(ctx, parsed)
	if err != nil {
		log.Error("retrieval failed", "type", parsed.Type, "retried", retried, "error", err)
		c.recordEvent(requestID, rawQuery, parsed, active, start, nil, retried, err)
		return nil, err
	}

	vectors := c.normalizer.Vectors(set.Candidates, profile)
	results := ranking.Rank(set.Candidates, vectors, profile, c.opts.topN)

	graph, err := c.retriever.GraphPayload(ctx, set, parsed.Subject)
	if err != nil {
		// The ranking is still valid without the visualization payload.
		log.Warn("graph payload unavailable", "error", err)
		graph = types.GraphPayload{}
	}

	resp := &types.SearchResponse{
		Query:          parsed,
		Persona:        profile.Name,
		PersonaDisplay: profile.DisplayName,
		Results:        results,
		Compare:        set.Compare,
		Graph:          graph,
		Metadata: types.SearchMetadata{
			RequestID:      requestID,
			ElapsedMS:      time.Since(start).Milliseconds(),
			CandidateCount: len(set.Candidates),
			Retried:        retried,
		},
	}

	if allPersonas {
		resp.AllPersonas = c.rankAllPersonas(set.Candidates)
	}

	log.Info("search complete", "type", parsed.Type, "candidates", len(set.Candidates),
		"results", len(results), "elapsed_ms", resp.Metadata.ElapsedMS)
	c.recordEvent(requestID, rawQuery, parsed, active, start, set, retried, nil)
	return resp, nil
}

// resolvePersona picks the scoring lens. A persona embedded in the
// query itself, a lens phrase or the acquisition default, takes
// precedence over the request persona.
func (c *Client) resolvePersona(parsed types.ParsedQuery, personaID string) string {
	if parsed.Persona != "" {
		return parsed.Persona
	}
	if personaID != "" {
		return personaID
	}
	return persona.ValueInvestor
}

// retrieve runs retrieval with a per-attempt timeout and exactly one
// retry after transient graph failures.
func (c *Client) retrieve(ctx context.Context, parsed types.ParsedQuery) (*types.CandidateSet, bool, error) {
	set, err := c.retrieveOnce(ctx, parsed)
	if err == nil {
		return set, false, nil
	}
	if !transient(err) {
		return nil, false, err
	}

	select {
	case <-time.After(c.opts.retryBackoff):
	case <-ctx.Done():
		return nil, true, ctx.Err()
	}
	set, err = c.retrieveOnce(ctx, parsed)
	return set, true, err
}

func (c *Client) retrieveOnce(ctx context.Context, parsed types.ParsedQuery) (*types.CandidateSet, error) {
	tctx, cancel := context.WithTimeout(ctx, c.opts.traversalTimeout)
	defer cancel()
	return c.retriever.Retrieve(tctx, parsed)
}

// transient reports whether a retrieval failure is worth one retry.
// Bad input (unknown companies, invalid queries) is not.
func transient(err error) bool {
	var unavailable *types.GraphUnavailableError
	return errors.As(err, &unavailable) || errors.Is(err, context.DeadlineExceeded)
}

// rankAllPersonas scores one candidate set under every persona. Scoring
// and ranking are pure, so the personas fan out in parallel.
func (c *Client) rankAllPersonas(candidates []types.Candidate) map[string]types.PersonaResults {
	profiles := c.personas.List()
	out := make(map[string]types.PersonaResults, len(profiles))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, profile := range profiles {
		wg.Add(1)
		go func(p persona.Profile) {
			defer wg.Done()
			vectors := c.normalizer.Vectors(candidates, p)
			results := ranking.Rank(candidates, vectors, p, c.opts.topN)
			mu.Lock()
			out[p.Name] = types.PersonaResults{
				Persona:        p.Name,
				PersonaDisplay: p.DisplayName,
				Results:        results,
			}
			mu.Unlock()
		}(profile)
	}
	wg.Wait()
	return out
}

func (c *Client) recordEvent(requestID, rawQuery string, parsed types.ParsedQuery, personaID string, start time.Time, set *types.CandidateSet, retried bool, err error) {
	event := telemetry.SearchEvent{
		RequestID: requestID,
		Timestamp: start.UTC(),
		QueryType: string(parsed.Type),
		RawQuery:  rawQuery,
		Persona:   personaID,
		ElapsedMS: time.Since(start).Milliseconds(),
		Retried:   retried,
	}
	if set != nil {
		event.CandidateCount = len(set.Candidates)
	}
	if err != nil {
		event.Error = err.Error()
	}
	c.recorder.Record(event)
}

// Personas lists the available scoring personas in canonical order.
func (c *Client) Personas() []persona.Profile {
	return c.personas.List()
}

// Companies returns the company directory sorted by id.
func (c *Client) Companies() []types.Company {
	out := make([]types.Company, len(c.population))
	copy(out, c.population)
	return out
}

// GetCompany fetches one company by id.
func (c *Client) GetCompany(ctx context.Context, id string) (types.Company, error) {
	return c.driver.GetCompany(ctx, id)
}

// SaveSnapshot writes the full graph into the given snapshot store so
// the service can serve searches without the graph database.
func (c *Client) SaveSnapshot(ctx context.Context, store *snapshot.Store) error {
	companies, err := c.driver.ListCompanies(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(companies))
	for i, company := range companies {
		ids[i] = company.ID
	}
	sort.Strings(ids)

	edges, err := c.driver.Subgraph(ctx, ids)
	if err != nil {
		return err
	}
	return store.SaveDataset(driver.Dataset{Companies: companies, Edges: edges})
}

// Close flushes telemetry and releases the underlying driver.
func (c *Client) Close(ctx context.Context) error {
	if err := c.recorder.Flush(); err != nil {
		c.log.Warn("telemetry flush failed", "error", err)
	}
	return c.driver.Close(ctx)
}
