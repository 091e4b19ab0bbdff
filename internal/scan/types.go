package scan

import (
	"context"

	"github.com/singh-automation/winscope/internal/models"
)

// Params are the optional knobs for one scan invocation.
type Params struct {
	// Terms overrides the profile keywords as the upstream search terms.
	Terms []string

	// WindowDays bounds the posted-date search window. Default 30.
	WindowDays int

	// PerTermLimit caps results per query term per source. Default 25.
	PerTermLimit int

	// MinScore drops scored records below the threshold. Zero disables the
	// filter. Records without a score (portals, hard rejects) are dropped
	// too when a threshold is set.
	MinScore int

	// Limit truncates the final ordered result set. Zero means no cap.
	Limit int
}

const (
	defaultWindowDays   = 30
	defaultPerTermLimit = 25
)

func (p Params) withDefaults() Params {
	if p.WindowDays <= 0 {
		p.WindowDays = defaultWindowDays
	}
	if p.PerTermLimit <= 0 {
		p.PerTermLimit = defaultPerTermLimit
	}
	return p
}

// Fetcher is one upstream source. Fetch issues one bounded-time request per
// term, concurrently, and returns whatever normalized records it could get.
// A non-nil error means the source failed entirely (every term); partial
// failure is absorbed and simply yields fewer records.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, terms []string, p Params) ([]models.Opportunity, error)
}

// SourceHealth is the advisory per-source signal surfaced instead of errors.
type SourceHealth struct {
	Source   string `json:"source"`
	Count    int    `json:"count"`
	Degraded bool   `json:"degraded"`
	Error    string `json:"error,omitempty"`
}

// Stats summarizes one scan's qualified result set.
type Stats struct {
	Total       int            `json:"total"`
	ByType      map[string]int `json:"by_type"`
	ByStatus    map[string]int `json:"by_status"`
	TotalValue  float64        `json:"total_value"`
	PortalCount int            `json:"portal_count"`

	// Dashboard counts carried over from the legacy platform.
	HighScoreCount int `json:"high_score_count"` // score >= 80
	QualifiedCount int `json:"qualified_count"`  // score >= 65
}

// Result is the scan pipeline's output: ordered, verdict-annotated records
// plus summary statistics and per-source health.
type Result struct {
	Opportunities []models.Opportunity `json:"opportunities"`
	Stats         Stats                `json:"stats"`
	Sources       []SourceHealth       `json:"sources"`
}
