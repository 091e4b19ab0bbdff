package scan

import (
	"testing"

	"github.com/singh-automation/winscope/internal/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestSortResults_PortalsLastNewestFirst(t *testing.T) {
	opps := []models.Opportunity{
		{ID: "portal-1", IsPortal: true},
		{ID: "old", PostedDate: "2026-01-05"},
		{ID: "new", PostedDate: "2026-08-20"},
		{ID: "undated"},
	}

	SortResults(opps)

	want := []string{"new", "old", "undated", "portal-1"}
	for i, id := range want {
		if opps[i].ID != id {
			t.Fatalf("expected order %v, got %s at position %d", want, opps[i].ID, i)
		}
	}
}

func TestSortResults_UnparseableDateSortsAsEpoch(t *testing.T) {
	opps := []models.Opportunity{
		{ID: "garbage", PostedDate: "sometime soon"},
		{ID: "dated", PostedDate: "2026-02-01"},
	}
	SortResults(opps)
	if opps[0].ID != "dated" {
		t.Fatalf("unparseable date must sort oldest, got %s first", opps[0].ID)
	}
}

func TestParsePostedDate_Formats(t *testing.T) {
	tests := []struct {
		raw string
		ok  bool
	}{
		{"2026-08-20", true},
		{"08/20/2026", true},
		{"2026-08-20T10:00:00Z", true},
		{"", false},
		{"TBD", false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := parsePostedDate(tt.raw)
			if tt.ok && got.IsZero() {
				t.Errorf("expected %q to parse", tt.raw)
			}
			if !tt.ok && !got.IsZero() {
				t.Errorf("expected %q to fall back to zero time", tt.raw)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	opps := []models.Opportunity{
		{
			Type:    models.TypeContract,
			Value:   floatPtr(250000),
			Verdict: &models.Verdict{Status: models.StatusPursue, Score: intPtr(85)},
		},
		{
			Type:    models.TypeGrant,
			Verdict: &models.Verdict{Status: models.StatusReview, Score: intPtr(70)},
		},
		{
			Type:    models.TypeContract,
			Value:   floatPtr(100000),
			Verdict: &models.Verdict{Status: models.StatusReject},
		},
		{
			Type:     models.TypeState,
			IsPortal: true,
			Verdict:  &models.Verdict{Status: models.StatusReview},
		},
	}

	stats := Summarize(opps)

	if stats.Total != 4 {
		t.Errorf("expected total 4, got %d", stats.Total)
	}
	if stats.ByType["contract"] != 2 || stats.ByType["grant"] != 1 || stats.ByType["state"] != 1 {
		t.Errorf("unexpected by-type counts: %v", stats.ByType)
	}
	if stats.ByStatus["Pursue"] != 1 || stats.ByStatus["Review"] != 2 || stats.ByStatus["Reject"] != 1 {
		t.Errorf("unexpected by-status counts: %v", stats.ByStatus)
	}
	if stats.TotalValue != 350000 {
		t.Errorf("expected total value 350000, got %f", stats.TotalValue)
	}
	if stats.PortalCount != 1 {
		t.Errorf("expected 1 portal, got %d", stats.PortalCount)
	}
	if stats.HighScoreCount != 1 {
		t.Errorf("expected 1 high-score record, got %d", stats.HighScoreCount)
	}
	if stats.QualifiedCount != 2 {
		t.Errorf("expected 2 qualified records, got %d", stats.QualifiedCount)
	}
}

func TestSummarize_AbsentValueIsNotZero(t *testing.T) {
	zero := 0.0
	stats := Summarize([]models.Opportunity{
		{Value: &zero},
		{Value: nil},
	})
	if stats.TotalValue != 0 {
		t.Fatalf("expected 0 total, got %f", stats.TotalValue)
	}
}
