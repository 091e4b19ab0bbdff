package scan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/singh-automation/winscope/internal/models"
)

// SAMFetcher searches the SAM.gov opportunities API (federal contract
// notices). It is the highest-precedence live source.
type SAMFetcher struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
}

func NewSAMFetcher(apiKey string) *SAMFetcher {
	return &SAMFetcher{
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		BaseURL: "https://api.sam.gov/opportunities/v2/search",
		APIKey:  apiKey,
	}
}

func (f *SAMFetcher) Name() string { return "sam.gov" }

type samResponse struct {
	TotalRecords      int         `json:"totalRecords"`
	OpportunitiesData []samRecord `json:"opportunitiesData"`
}

type samRecord struct {
	NoticeID                  string `json:"noticeId"`
	Title                     string `json:"title"`
	SolicitationNumber        string `json:"solicitationNumber"`
	FullParentPathName        string `json:"fullParentPathName"`
	PostedDate                string `json:"postedDate"`
	ResponseDeadLine          string `json:"responseDeadLine"`
	NaicsCode                 string `json:"naicsCode"`
	TypeOfSetAsideDescription string `json:"typeOfSetAsideDescription"`
	Description               string `json:"description"`
	UILink                    string `json:"uiLink"`
	Award                     struct {
		Amount string `json:"amount"`
	} `json:"award"`
}

// Fetch issues one search per term across the posted-date window and
// normalizes the hits.
func (f *SAMFetcher) Fetch(ctx context.Context, terms []string, p Params) ([]models.Opportunity, error) {
	return fetchTerms(ctx, "SAM", terms, func(ctx context.Context, term string) ([]models.Opportunity, error) {
		return f.fetchTerm(ctx, term, p)
	})
}

func (f *SAMFetcher) fetchTerm(ctx context.Context, term string, p Params) ([]models.Opportunity, error) {
	now := time.Now().UTC()
	query := url.Values{}
	query.Set("api_key", f.APIKey)
	query.Set("title", term)
	query.Set("postedFrom", now.AddDate(0, 0, -p.WindowDays).Format("01/02/2006"))
	query.Set("postedTo", now.Format("01/02/2006"))
	query.Set("limit", strconv.Itoa(p.PerTermLimit))

	req, err := http.NewRequestWithContext(ctx, "GET", f.BaseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
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

	var apiResp samResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	log.Printf("[SAM] term %q: %d notices (total: %d)", term, len(apiResp.OpportunitiesData), apiResp.TotalRecords)

	opportunities := make([]models.Opportunity, 0, len(apiResp.OpportunitiesData))
	for _, rec := range apiResp.OpportunitiesData {
		id := rec.NoticeID
		if id == "" {
			id = shortHash(rec.Title, rec.PostedDate)
		}

		opp := models.Opportunity{
			ID:          "sam-" + id,
			Title:       orDefault(rec.Title, defaultTitle),
			Agency:      orDefault(rec.FullParentPathName, defaultAgency),
			PostedDate:  rec.PostedDate,
			CloseDate:   rec.ResponseDeadLine,
			SetAside:    rec.TypeOfSetAsideDescription,
			NAICSCode:   rec.NaicsCode,
			Description: sanitizeUTF8(HTMLToText(sanitizeHTML(rec.Description))),
			Link:        rec.UILink,
			Source:      f.Name(),
			Type:        models.TypeContract,
			IsLive:      true,
		}

		if v, ok := parseMoney(rec.Award.Amount); ok {
			opp.Value = &v
		}

		opportunities = append(opportunities, opp)
	}

	return opportunities, nil
}
