package scan

import "github.com/singh-automation/winscope/internal/models"

// Merge concatenates batches in precedence order and drops repeated ids.
// First seen wins: a later duplicate is discarded even when it carries
// richer fields, so callers control precedence purely through batch order.
// The seen set is local to one invocation; merge runs after the fetch
// fan-in, single-threaded by construction.
func Merge(batches ...[]models.Opportunity) []models.Opportunity {
	seen := make(map[string]struct{})
	var out []models.Opportunity
	for _, batch := range batches {
		for _, opp := range batch {
			if opp.ID == "" {
				continue
			}
			if _, ok := seen[opp.ID]; ok {
				continue
			}
			seen[opp.ID] = struct{}{}
			out = append(out, opp)
		}
	}
	return out
}
