package scan

import (
	"sort"
	"strings"
	"time"

	"github.com/singh-automation/winscope/internal/models"
)

// postedDateFormats are tried in order when ordering records. Sources are
// normalized toward ISO but forecast rows carry whatever the page showed.
var postedDateFormats = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
}

// parsePostedDate returns the zero time for missing or unparseable dates,
// which sorts those records as oldest.
func parsePostedDate(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, format := range postedDateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SortResults orders the final collection: actionable records before portal
// references, newest posted first within each partition.
func SortResults(opps []models.Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		if opps[i].IsPortal != opps[j].IsPortal {
			return !opps[i].IsPortal
		}
		return parsePostedDate(opps[i].PostedDate).After(parsePostedDate(opps[j].PostedDate))
	})
}

// Summarize computes the scan's aggregate statistics. Absent values
// contribute nothing to TotalValue; they are not zeros.
func Summarize(opps []models.Opportunity) Stats {
	stats := Stats{
		Total:    len(opps),
		ByType:   make(map[string]int),
		ByStatus: make(map[string]int),
	}

	for _, opp := range opps {
		stats.ByType[string(opp.Type)]++
		if opp.Verdict != nil {
			stats.ByStatus[string(opp.Verdict.Status)]++
			if opp.Verdict.Score != nil {
				if *opp.Verdict.Score >= 80 {
					stats.HighScoreCount++
				}
				if *opp.Verdict.Score >= 65 {
					stats.QualifiedCount++
				}
			}
		}
		if opp.Value != nil {
			stats.TotalValue += *opp.Value
		}
		if opp.IsPortal {
			stats.PortalCount++
		}
	}

	return stats
}
