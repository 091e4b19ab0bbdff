package scan

import (
	"context"
	"errors"
	"testing"

	"github.com/singh-automation/winscope/internal/models"
	"github.com/singh-automation/winscope/internal/qualify"
)

type stubFetcher struct {
	name string
	opps []models.Opportunity
	err  error
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch(_ context.Context, _ []string, _ Params) ([]models.Opportunity, error) {
	return s.opps, s.err
}

func scanProfile() qualify.Profile {
	return qualify.Profile{
		NAICSCodes:          []string{"333249"},
		Keywords:            []string{"robotic", "welding"},
		NotCertified:        []string{"HUBZone"},
		CompatibleSetAsides: []string{"small business"},
	}
}

func TestScan_QualifiesAndSorts(t *testing.T) {
	s := &Scanner{
		Profile: scanProfile(),
		Fetchers: []Fetcher{
			&stubFetcher{name: "sam.gov", opps: []models.Opportunity{
				{ID: "sam-1", Title: "Robotic Welding Cell", NAICSCode: "333249", SetAside: "Small Business", PostedDate: "2026-08-01", Type: models.TypeContract},
			}},
		},
	}

	result, err := s.Scan(context.Background(), Params{})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(result.Opportunities) != 1+len(Portals()) {
		t.Fatalf("expected fetched record plus portal registry, got %d", len(result.Opportunities))
	}

	first := result.Opportunities[0]
	if first.ID != "sam-1" {
		t.Fatalf("live record must sort before portals, got %s", first.ID)
	}
	if first.Verdict == nil || first.Verdict.Status != models.StatusPursue {
		t.Fatalf("expected Pursue verdict, got %+v", first.Verdict)
	}

	for _, opp := range result.Opportunities[1:] {
		if !opp.IsPortal {
			t.Fatalf("expected only portals after live records, got %s", opp.ID)
		}
		if opp.Verdict == nil || opp.Verdict.Status != models.StatusReview {
			t.Fatalf("portal %s must keep its pre-assigned Review verdict", opp.ID)
		}
	}
}

func TestScan_PartialFailureStillReturns(t *testing.T) {
	s := &Scanner{
		Profile: scanProfile(),
		Fetchers: []Fetcher{
			&stubFetcher{name: "sam.gov", err: errors.New("all 3 query terms failed: timeout")},
			&stubFetcher{name: "sbir.gov", opps: []models.Opportunity{
				{ID: "sbir-1", Title: "Welding automation topic", Type: models.TypeSBIR},
			}},
		},
	}

	result, err := s.Scan(context.Background(), Params{})
	if err != nil {
		t.Fatalf("partial upstream failure must not fail the scan: %v", err)
	}

	var sam, sbir *SourceHealth
	for i := range result.Sources {
		switch result.Sources[i].Source {
		case "sam.gov":
			sam = &result.Sources[i]
		case "sbir.gov":
			sbir = &result.Sources[i]
		}
	}
	if sam == nil || !sam.Degraded || sam.Error == "" {
		t.Fatalf("failed source must be flagged degraded, got %+v", sam)
	}
	if sbir == nil || sbir.Degraded || sbir.Count != 1 {
		t.Fatalf("healthy source misreported: %+v", sbir)
	}

	live := 0
	for _, opp := range result.Opportunities {
		if !opp.IsPortal {
			live++
		}
	}
	if live != 1 {
		t.Fatalf("expected the surviving source's record, got %d live records", live)
	}
}

func TestScan_DedupAcrossFetchersByPrecedence(t *testing.T) {
	s := &Scanner{
		Profile: scanProfile(),
		Fetchers: []Fetcher{
			&stubFetcher{name: "sam.gov", opps: []models.Opportunity{
				{ID: "shared", Title: "From SAM", Type: models.TypeContract},
			}},
			&stubFetcher{name: "grants.gov", opps: []models.Opportunity{
				{ID: "shared", Title: "From Grants", Type: models.TypeGrant},
			}},
		},
	}

	result, err := s.Scan(context.Background(), Params{})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	seen := 0
	for _, opp := range result.Opportunities {
		if opp.ID == "shared" {
			seen++
			if opp.Title != "From SAM" {
				t.Errorf("higher-precedence fetcher must win, got %q", opp.Title)
			}
		}
	}
	if seen != 1 {
		t.Fatalf("expected exactly one shared record, got %d", seen)
	}
}

func TestScan_MinScoreFilter(t *testing.T) {
	s := &Scanner{
		Profile: scanProfile(),
		Fetchers: []Fetcher{
			&stubFetcher{name: "sam.gov", opps: []models.Opportunity{
				{ID: "strong", Title: "Robotic Welding Cell", NAICSCode: "333249", SetAside: "Small Business"},
				{ID: "weak", Title: "Office furniture"},
			}},
		},
	}

	result, err := s.Scan(context.Background(), Params{MinScore: 50})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(result.Opportunities) != 1 || result.Opportunities[0].ID != "strong" {
		t.Fatalf("min-score filter should keep only the strong record, got %v", result.Opportunities)
	}
}

func TestScan_LimitTruncatesAfterSort(t *testing.T) {
	s := &Scanner{
		Profile: scanProfile(),
		Fetchers: []Fetcher{
			&stubFetcher{name: "sam.gov", opps: []models.Opportunity{
				{ID: "older", PostedDate: "2026-01-01"},
				{ID: "newer", PostedDate: "2026-08-01"},
			}},
		},
	}

	result, err := s.Scan(context.Background(), Params{Limit: 1})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(result.Opportunities) != 1 || result.Opportunities[0].ID != "newer" {
		t.Fatalf("limit must apply after ordering, got %v", result.Opportunities)
	}
	if result.Stats.Total < 2 {
		t.Fatalf("stats cover the full filtered set, got total %d", result.Stats.Total)
	}
}

func TestScan_NoTermsFails(t *testing.T) {
	s := &Scanner{Profile: qualify.Profile{}, Fetchers: nil}
	if _, err := s.Scan(context.Background(), Params{}); err == nil {
		t.Fatal("expected configuration error when no terms are available")
	}
}

func TestNewScanner_RequiresAPIKey(t *testing.T) {
	if _, err := NewScanner(scanProfile(), ""); err == nil {
		t.Fatal("expected error for missing SAM API key")
	}
	if _, err := NewScanner(scanProfile(), "test-key"); err != nil {
		t.Fatalf("unexpected error with key present: %v", err)
	}
}
