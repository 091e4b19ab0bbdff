package scan

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/singh-automation/winscope/internal/models"
)

// fetchTermFunc fetches and normalizes one query term's records.
type fetchTermFunc func(ctx context.Context, term string) ([]models.Opportunity, error)

// fetchTerms fans out one request per term, waits for all of them, and
// collapses the results in term order, deduplicating on record id so a
// notice hit by several terms appears once. A failed term contributes
// nothing; only when every term fails does the source report an error,
// which the scanner downgrades to a health signal.
func fetchTerms(ctx context.Context, source string, terms []string, fn fetchTermFunc) ([]models.Opportunity, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	results := make([][]models.Opportunity, len(terms))
	errs := make([]error, len(terms))

	var wg sync.WaitGroup
	for i, term := range terms {
		wg.Add(1)
		go func(i int, term string) {
			defer wg.Done()
			opps, err := fn(ctx, term)
			if err != nil {
				log.Printf("[%s] term %q failed: %v", source, term, err)
				errs[i] = err
				return
			}
			results[i] = opps
		}(i, term)
	}
	wg.Wait()

	seen := make(map[string]struct{})
	var out []models.Opportunity
	failed := 0
	var firstErr error
	for i := range terms {
		if errs[i] != nil {
			failed++
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		for _, opp := range results[i] {
			if _, ok := seen[opp.ID]; ok {
				continue
			}
			seen[opp.ID] = struct{}{}
			out = append(out, opp)
		}
	}

	if failed == len(terms) {
		return nil, fmt.Errorf("all %d query terms failed: %w", failed, firstErr)
	}
	return out, nil
}
