package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/singh-automation/winscope/internal/models"
)

// GrantsFetcher searches the Grants.gov search2 API for posted federal
// grants.
type GrantsFetcher struct {
	Client  *http.Client
	BaseURL string
}

func NewGrantsFetcher() *GrantsFetcher {
	return &GrantsFetcher{
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		BaseURL: "https://api.grants.gov/v1/api/search2",
	}
}

func (f *GrantsFetcher) Name() string { return "grants.gov" }

// grantsSearchRequest matches the Grants.gov search2 API schema.
type grantsSearchRequest struct {
	Keyword        string `json:"keyword"`
	OppStatuses    string `json:"oppStatuses"`
	SortBy         string `json:"sortBy"`
	Rows           int    `json:"rows"`
	StartRecordNum int    `json:"startRecordNum"`
}

// grantsResponse represents the search2 API response (wrapped in "data").
type grantsResponse struct {
	Data struct {
		HitCount int            `json:"hitCount"`
		OppHits  []grantsRecord `json:"oppHits"`
	} `json:"data"`
	ErrorCode int    `json:"errorcode"`
	Msg       string `json:"msg"`
}

type grantsRecord struct {
	ID        string   `json:"id"`
	Number    string   `json:"number"`
	Title     string   `json:"title"`
	Agency    string   `json:"agency"`
	OpenDate  string   `json:"openDate"`
	CloseDate string   `json:"closeDate"`
	OppStatus string   `json:"oppStatus"`
	CFDAList  []string `json:"cfdaList"`
}

func (f *GrantsFetcher) Fetch(ctx context.Context, terms []string, p Params) ([]models.Opportunity, error) {
	return fetchTerms(ctx, "GrantsGov", terms, func(ctx context.Context, term string) ([]models.Opportunity, error) {
		return f.fetchTerm(ctx, term, p)
	})
}

func (f *GrantsFetcher) fetchTerm(ctx context.Context, term string, p Params) ([]models.Opportunity, error) {
	searchReq := grantsSearchRequest{
		Keyword:     term,
		OppStatuses: "posted",
		SortBy:      "openDate|desc",
		Rows:        p.PerTermLimit,
	}

	jsonBody, err := json.Marshal(searchReq)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", f.BaseURL, strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp grantsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if apiResp.ErrorCode != 0 {
		return nil, fmt.Errorf("API error: %s", apiResp.Msg)
	}

	log.Printf("[GrantsGov] term %q: %d grants (total: %d)", term, len(apiResp.Data.OppHits), apiResp.Data.HitCount)

	opportunities := make([]models.Opportunity, 0, len(apiResp.Data.OppHits))
	for _, rec := range apiResp.Data.OppHits {
		id := rec.ID
		if id == "" {
			id = shortHash(rec.Number, rec.Title)
		}

		opp := models.Opportunity{
			ID:          "grants-" + id,
			Title:       orDefault(rec.Title, defaultTitle),
			Agency:      orDefault(rec.Agency, defaultAgency),
			PostedDate:  normalizeGrantsDate(rec.OpenDate),
			CloseDate:   normalizeGrantsDate(rec.CloseDate),
			Description: fmt.Sprintf("Federal grant from %s. CFDA: %s", orDefault(rec.Agency, defaultAgency), strings.Join(rec.CFDAList, ", ")),
			Link:        fmt.Sprintf("https://www.grants.gov/search-results-detail/%s", rec.ID),
			Source:      f.Name(),
			Type:        models.TypeGrant,
			IsLive:      !strings.EqualFold(rec.OppStatus, "closed"),
		}

		opportunities = append(opportunities, opp)
	}

	return opportunities, nil
}

// normalizeGrantsDate converts the API's MM/DD/YYYY dates to ISO so the
// reporter's ordering treats every source uniformly. Unparseable input is
// passed through untouched.
func normalizeGrantsDate(raw string) string {
	if raw == "" {
		return ""
	}
	if t, err := time.Parse("01/02/2006", raw); err == nil {
		return t.Format("2006-01-02")
	}
	return raw
}
