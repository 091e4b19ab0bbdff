package scan

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/singh-automation/winscope/internal/models"
	"github.com/singh-automation/winscope/internal/qualify"
)

// Scanner runs the full pipeline: fan out all source fetchers, fan in,
// merge with the static portal registry, qualify every survivor, then sort
// and summarize.
type Scanner struct {
	Profile  qualify.Profile
	Fetchers []Fetcher
}

// NewScanner wires the default source set. A missing SAM API key is the one
// fatal configuration error and is reported here, before any fetch.
func NewScanner(profile qualify.Profile, samAPIKey string) (*Scanner, error) {
	if strings.TrimSpace(samAPIKey) == "" {
		return nil, fmt.Errorf("SAM_API_KEY is not configured")
	}

	registry, err := LoadRegistry("internal/scan/config/sources.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading source registry: %w", err)
	}

	return &Scanner{
		Profile: profile,
		Fetchers: []Fetcher{
			NewSAMFetcher(samAPIKey),
			NewSBIRFetcher(),
			NewGrantsFetcher(),
			NewForecastFetcher(registry.ForecastSources),
		},
	}, nil
}

// Scan executes one scan invocation. Upstream failures never fail the scan;
// they show up as degraded entries in Result.Sources and smaller counts.
func (s *Scanner) Scan(ctx context.Context, params Params) (*Result, error) {
	params = params.withDefaults()

	terms := params.Terms
	if len(terms) == 0 {
		terms = s.Profile.Keywords
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("no query terms: capability profile has no keywords")
	}

	// Fan-out: one goroutine per fetcher; each fetcher fans out again per
	// term. Goroutines write only their own slot, so the barrier below is
	// the only synchronization needed.
	batches := make([][]models.Opportunity, len(s.Fetchers))
	health := make([]SourceHealth, len(s.Fetchers))

	g, gctx := errgroup.WithContext(ctx)
	for i, fetcher := range s.Fetchers {
		g.Go(func() error {
			opps, err := fetcher.Fetch(gctx, terms, params)
			h := SourceHealth{Source: fetcher.Name(), Count: len(opps)}
			if err != nil {
				h.Degraded = true
				h.Error = err.Error()
				log.Printf("[Scan] source %s degraded: %v", fetcher.Name(), err)
			}
			batches[i] = opps
			health[i] = h
			return nil
		})
	}
	_ = g.Wait() // fan-in barrier; fetch errors were downgraded to health entries

	// Merge in precedence order: live federal first, then the static
	// registry last.
	merged := Merge(append(batches, Portals())...)

	for i := range merged {
		if merged[i].Verdict == nil {
			verdict := qualify.Qualify(merged[i], s.Profile)
			merged[i].Verdict = &verdict
		}
	}

	if params.MinScore > 0 {
		filtered := merged[:0]
		for _, opp := range merged {
			v := opp.Verdict
			if v != nil && v.Score != nil && *v.Score >= params.MinScore {
				filtered = append(filtered, opp)
			}
		}
		merged = filtered
	}

	SortResults(merged)
	stats := Summarize(merged)

	if params.Limit > 0 && len(merged) > params.Limit {
		merged = merged[:params.Limit]
	}

	log.Printf("[Scan] complete: %d opportunities (%d portals), %d sources", stats.Total, stats.PortalCount, len(health))

	return &Result{
		Opportunities: merged,
		Stats:         stats,
		Sources:       health,
	}, nil
}
